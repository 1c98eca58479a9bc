// Package catalog provisions catalog databases and tables backing
// database and table descriptors.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
)

// Provisioner creates and updates catalog databases and tables
// idempotently.
type Provisioner struct {
	client *glue.Client
}

// New wraps an existing Glue client.
func New(client *glue.Client) *Provisioner {
	return &Provisioner{client: client}
}

// DatabaseRecord is the subset of a catalog database's fields the
// controllers compare against desired state.
type DatabaseRecord struct {
	Name        string
	Description string
	LocationURI string
}

// GetDatabase fetches name, mapping EntityNotFoundException to (nil, nil).
func (p *Provisioner) GetDatabase(ctx context.Context, name string) (*DatabaseRecord, error) {
	out, err := p.client.GetDatabase(ctx, &glue.GetDatabaseInput{Name: aws.String(name)})
	if err != nil {
		var notFound *types.EntityNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: getting database %q: %w", name, err)
	}
	rec := &DatabaseRecord{Name: aws.ToString(out.Database.Name)}
	if out.Database.Description != nil {
		rec.Description = *out.Database.Description
	}
	if out.Database.LocationUri != nil {
		rec.LocationURI = *out.Database.LocationUri
	}
	return rec, nil
}

// CreateDatabase creates a catalog database with the identifying tag
// recorded as a parameter (Glue databases have no first-class tagging API
// in this SDK surface, so the tag rides in Parameters).
func (p *Provisioner) CreateDatabase(ctx context.Context, name, description, locationURI string) error {
	_, err := p.client.CreateDatabase(ctx, &glue.CreateDatabaseInput{
		DatabaseInput: &types.DatabaseInput{
			Name:        aws.String(name),
			Description: aws.String(description),
			LocationUri: aws.String(locationURI),
			Parameters:  map[string]string{"provisioner": "basin"},
		},
	})
	if err != nil {
		return fmt.Errorf("catalog: creating database %q: %w", name, err)
	}
	return nil
}

// UpdateDatabase overwrites description and location on an existing
// catalog database.
func (p *Provisioner) UpdateDatabase(ctx context.Context, name, description, locationURI string) error {
	_, err := p.client.UpdateDatabase(ctx, &glue.UpdateDatabaseInput{
		Name: aws.String(name),
		DatabaseInput: &types.DatabaseInput{
			Name:        aws.String(name),
			Description: aws.String(description),
			LocationUri: aws.String(locationURI),
			Parameters:  map[string]string{"provisioner": "basin"},
		},
	})
	if err != nil {
		return fmt.Errorf("catalog: updating database %q: %w", name, err)
	}
	return nil
}

// TableColumn is one column of a catalog table input.
type TableColumn struct {
	Name    string
	Type    string
	Comment string
}

// TableRecord is the subset of a catalog table's fields compared against
// desired state.
type TableRecord struct {
	Name     string
	Columns  []TableColumn
	Location string
}

// GetTable fetches name within database, mapping EntityNotFoundException
// to (nil, nil).
func (p *Provisioner) GetTable(ctx context.Context, database, name string) (*TableRecord, error) {
	out, err := p.client.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(name),
	})
	if err != nil {
		var notFound *types.EntityNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: getting table %q.%q: %w", database, name, err)
	}

	rec := &TableRecord{Name: aws.ToString(out.Table.Name)}
	if out.Table.StorageDescriptor != nil {
		rec.Location = aws.ToString(out.Table.StorageDescriptor.Location)
		for _, c := range out.Table.StorageDescriptor.Columns {
			rec.Columns = append(rec.Columns, TableColumn{
				Name:    aws.ToString(c.Name),
				Type:    aws.ToString(c.Type),
				Comment: aws.ToString(c.Comment),
			})
		}
	}
	return rec, nil
}

// CreateTable creates a catalog table under database.
func (p *Provisioner) CreateTable(ctx context.Context, database, name, location string, columns []TableColumn) error {
	_, err := p.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   tableInput(name, location, columns),
	})
	if err != nil {
		return fmt.Errorf("catalog: creating table %q.%q: %w", database, name, err)
	}
	return nil
}

// UpdateTable overwrites an existing catalog table's columns and location.
func (p *Provisioner) UpdateTable(ctx context.Context, database, name, location string, columns []TableColumn) error {
	_, err := p.client.UpdateTable(ctx, &glue.UpdateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   tableInput(name, location, columns),
	})
	if err != nil {
		return fmt.Errorf("catalog: updating table %q.%q: %w", database, name, err)
	}
	return nil
}

func tableInput(name, location string, columns []TableColumn) *types.TableInput {
	cols := make([]types.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, types.Column{
			Name:    aws.String(c.Name),
			Type:    aws.String(strings.ToLower(c.Type)),
			Comment: aws.String(c.Comment),
		})
	}
	return &types.TableInput{
		Name: aws.String(name),
		StorageDescriptor: &types.StorageDescriptor{
			Location: aws.String(location),
			Columns:  cols,
		},
	}
}
