package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/cz-vaporeon/basin/pkg/descriptor"
	"github.com/cz-vaporeon/basin/pkg/provisioner/catalog"
)

type fakeObjectStore struct {
	exists     map[string]bool
	createErr  error
	createdLog []string
}

func (f *fakeObjectStore) BucketExists(ctx context.Context, name string) (bool, error) {
	return f.exists[name], nil
}

func (f *fakeObjectStore) CreateBucket(ctx context.Context, name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdLog = append(f.createdLog, name)
	return nil
}

func (f *fakeObjectStore) UpdateBucket(ctx context.Context, name string) error { return nil }

type fakeCatalog struct {
	databases map[string]*catalog.DatabaseRecord
	tables    map[string]*catalog.TableRecord
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{databases: map[string]*catalog.DatabaseRecord{}, tables: map[string]*catalog.TableRecord{}}
}

func (f *fakeCatalog) GetDatabase(ctx context.Context, name string) (*catalog.DatabaseRecord, error) {
	return f.databases[name], nil
}

func (f *fakeCatalog) CreateDatabase(ctx context.Context, name, description, locationURI string) error {
	f.databases[name] = &catalog.DatabaseRecord{Name: name, Description: description, LocationURI: locationURI}
	return nil
}

func (f *fakeCatalog) UpdateDatabase(ctx context.Context, name, description, locationURI string) error {
	f.databases[name] = &catalog.DatabaseRecord{Name: name, Description: description, LocationURI: locationURI}
	return nil
}

func (f *fakeCatalog) GetTable(ctx context.Context, database, name string) (*catalog.TableRecord, error) {
	return f.tables[database+"."+name], nil
}

func (f *fakeCatalog) CreateTable(ctx context.Context, database, name, location string, columns []catalog.TableColumn) error {
	f.tables[database+"."+name] = &catalog.TableRecord{Name: name, Location: location, Columns: columns}
	return nil
}

func (f *fakeCatalog) UpdateTable(ctx context.Context, database, name, location string, columns []catalog.TableColumn) error {
	f.tables[database+"."+name] = &catalog.TableRecord{Name: name, Location: location, Columns: columns}
	return nil
}

func TestDatabaseController_ReconcileCreatesBucketAndCatalogDatabase(t *testing.T) {
	ctx := context.Background()
	s := newDescriptorStoreForTest(t)
	objStore := &fakeObjectStore{exists: map[string]bool{}}
	cat := newFakeCatalog()
	c := NewDatabaseController(s, objStore, cat)

	d := &descriptor.Database{DescriptorID: "d1", Name: "sales", Summary: "sales data"}

	if err := c.Reconcile(ctx, d); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(objStore.createdLog) != 1 || objStore.createdLog[0] != descriptor.BucketName(d) {
		t.Fatalf("expected bucket to be created, got %v", objStore.createdLog)
	}
	if _, ok := cat.databases[descriptor.CatalogDatabaseName(d)]; !ok {
		t.Fatal("expected catalog database to be created")
	}
}

func TestDatabaseController_Validate_RejectsBadName(t *testing.T) {
	c := NewDatabaseController(nil, nil, nil)
	err := c.Validate(&descriptor.Database{DescriptorID: "d1", Name: "Bad Name!"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDatabaseController_Reconcile_WrapsProvisionerFailure(t *testing.T) {
	ctx := context.Background()
	s := newDescriptorStoreForTest(t)
	objStore := &fakeObjectStore{exists: map[string]bool{}, createErr: errors.New("s3 unavailable")}
	cat := newFakeCatalog()
	c := NewDatabaseController(s, objStore, cat)

	err := c.Reconcile(ctx, &descriptor.Database{DescriptorID: "d1", Name: "sales"})

	var provErr *ProvisionerError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProvisionerError, got %v", err)
	}
}
