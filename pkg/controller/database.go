package controller

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
	"github.com/cz-vaporeon/basin/pkg/provisioner/catalog"
)

// objectStoreProvisioner is the subset of objectstore.Provisioner the
// database controller needs; narrowed to an interface so it can be faked
// in tests.
type objectStoreProvisioner interface {
	BucketExists(ctx context.Context, name string) (bool, error)
	CreateBucket(ctx context.Context, name string) error
	UpdateBucket(ctx context.Context, name string) error
}

// catalogDatabaseProvisioner is the database-scoped subset of
// catalog.Provisioner.
type catalogDatabaseProvisioner interface {
	GetDatabase(ctx context.Context, name string) (*catalog.DatabaseRecord, error)
	CreateDatabase(ctx context.Context, name, description, locationURI string) error
	UpdateDatabase(ctx context.Context, name, description, locationURI string) error
}

// DatabaseController validates and reconciles database descriptors: a
// bucket, a catalog database, and (reserved) an IAM entity.
type DatabaseController struct {
	store       *store.DescriptorStore
	objectStore objectStoreProvisioner
	catalog     catalogDatabaseProvisioner
}

// NewDatabaseController builds a DatabaseController.
func NewDatabaseController(s *store.DescriptorStore, os objectStoreProvisioner, cat catalogDatabaseProvisioner) *DatabaseController {
	return &DatabaseController{store: s, objectStore: os, catalog: cat}
}

func (c *DatabaseController) Kind() string { return string(descriptor.KindDatabase) }

func (c *DatabaseController) List(ctx context.Context) ([]*descriptor.Database, error) {
	return c.store.ListDatabases(ctx)
}

// Validate checks the database name against the shared name pattern.
func (c *DatabaseController) Validate(d *descriptor.Database) error {
	if !descriptor.NamePattern.MatchString(d.Name) {
		return &ValidationError{Message: fmt.Sprintf("database name %q must match %s", d.Name, descriptor.NamePattern)}
	}
	return nil
}

// Reconcile fans out the object-store and catalog sub-reconciliations
// concurrently and awaits both; the first failure cancels its peer. IAM is
// reserved for a future sub-reconciliation and is currently a no-op.
func (c *DatabaseController) Reconcile(ctx context.Context, d *descriptor.Database) error {
	if err := c.Validate(d); err != nil {
		return &ControllerError{Cause: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.reconcileObjectStore(gctx, d) })
	g.Go(func() error { return c.reconcileCatalog(gctx, d) })
	g.Go(func() error { return c.reconcileIAM(gctx, d) })

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func (c *DatabaseController) reconcileObjectStore(ctx context.Context, d *descriptor.Database) error {
	name := descriptor.BucketName(d)
	exists, err := c.objectStore.BucketExists(ctx, name)
	if err != nil {
		return &ProvisionerError{Cause: err}
	}
	if !exists {
		if err := c.objectStore.CreateBucket(ctx, name); err != nil {
			return &ProvisionerError{Cause: err}
		}
		return nil
	}
	if err := c.objectStore.UpdateBucket(ctx, name); err != nil {
		return &ProvisionerError{Cause: err}
	}
	return nil
}

func (c *DatabaseController) reconcileCatalog(ctx context.Context, d *descriptor.Database) error {
	name := descriptor.CatalogDatabaseName(d)
	location := fmt.Sprintf("s3://%s", descriptor.BucketName(d))

	existing, err := c.catalog.GetDatabase(ctx, name)
	if err != nil {
		return &ProvisionerError{Cause: err}
	}
	if existing == nil {
		if err := c.catalog.CreateDatabase(ctx, name, d.Summary, location); err != nil {
			return &ProvisionerError{Cause: err}
		}
		return nil
	}
	if err := c.catalog.UpdateDatabase(ctx, name, d.Summary, location); err != nil {
		return &ProvisionerError{Cause: err}
	}
	return nil
}

// reconcileIAM is reserved for a future IAM policy sub-reconciliation.
func (c *DatabaseController) reconcileIAM(ctx context.Context, d *descriptor.Database) error {
	return nil
}
