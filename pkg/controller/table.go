package controller

import (
	"context"
	"fmt"

	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
	"github.com/cz-vaporeon/basin/pkg/provisioner/catalog"
)

// catalogTableProvisioner is the table-scoped subset of catalog.Provisioner.
type catalogTableProvisioner interface {
	GetTable(ctx context.Context, database, name string) (*catalog.TableRecord, error)
	CreateTable(ctx context.Context, database, name, location string, columns []catalog.TableColumn) error
	UpdateTable(ctx context.Context, database, name, location string, columns []catalog.TableColumn) error
}

// TableController validates and reconciles table descriptors: resolving
// the parent database dependency and converging a catalog table.
type TableController struct {
	store   *store.DescriptorStore
	catalog catalogTableProvisioner
}

// NewTableController builds a TableController.
func NewTableController(s *store.DescriptorStore, cat catalogTableProvisioner) *TableController {
	return &TableController{store: s, catalog: cat}
}

func (c *TableController) Kind() string { return string(descriptor.KindTable) }

func (c *TableController) List(ctx context.Context) ([]*descriptor.Table, error) {
	return c.store.ListTables(ctx)
}

// Validate checks the table name, and each column's name and type against
// the supported set. ColumnComplex and any other unrecognized type fail
// validation even though they deserialize fine.
func (c *TableController) Validate(t *descriptor.Table) error {
	if !descriptor.NamePattern.MatchString(t.Name) {
		return &ValidationError{Message: fmt.Sprintf("table name %q must match %s", t.Name, descriptor.NamePattern)}
	}
	for _, col := range t.Columns {
		if !descriptor.ColumnNamePattern.MatchString(col.Name) {
			return &ValidationError{Message: fmt.Sprintf("column name %q must match %s", col.Name, descriptor.ColumnNamePattern)}
		}
		if !descriptor.SupportedColumnTypes[col.Codec.ColumnKind] {
			return &ValidationError{Message: fmt.Sprintf("column %q has unsupported type %q", col.Name, col.Codec.ColumnKind)}
		}
	}
	return nil
}

// Reconcile resolves t's database dependency, then converges a catalog
// table. A missing dependency returns DependencyMissingError rather than
// succeeding silently: the loop will retry on the next tick once the
// database descriptor appears.
func (c *TableController) Reconcile(ctx context.Context, t *descriptor.Table) error {
	if err := c.Validate(t); err != nil {
		return &ControllerError{Cause: err}
	}

	db, ok, err := c.store.GetDatabase(ctx, t.Database)
	if err != nil {
		return &ProvisionerError{Cause: err}
	}
	if !ok {
		return &DependencyMissingError{Ref: t.Database}
	}

	dbCatalogName := descriptor.CatalogDatabaseName(db)
	location := descriptor.TableLocation(db, t)
	columns := make([]catalog.TableColumn, 0, len(t.Columns))
	for _, col := range t.Columns {
		columns = append(columns, catalog.TableColumn{
			Name:    col.Name,
			Type:    string(col.Codec.ColumnKind),
			Comment: col.Summary,
		})
	}

	existing, err := c.catalog.GetTable(ctx, dbCatalogName, t.Name)
	if err != nil {
		return &ProvisionerError{Cause: err}
	}
	if existing == nil {
		if err := c.catalog.CreateTable(ctx, dbCatalogName, t.Name, location, columns); err != nil {
			return &ProvisionerError{Cause: err}
		}
		return nil
	}
	if err := c.catalog.UpdateTable(ctx, dbCatalogName, t.Name, location, columns); err != nil {
		return &ProvisionerError{Cause: err}
	}
	return nil
}
