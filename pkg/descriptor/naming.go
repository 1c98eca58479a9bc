package descriptor

import (
	"fmt"
	"strings"
)

// BucketName returns the deterministic object-store bucket name for a
// database. Changing this format breaks continuity with already-deployed
// buckets — it is part of the external contract, not an implementation
// detail.
func BucketName(d *Database) string {
	return fmt.Sprintf("cz-vaporeon-db-%s", strings.ReplaceAll(d.Name, "_", "-"))
}

// CatalogDatabaseName returns the deterministic catalog database name.
func CatalogDatabaseName(d *Database) string {
	return fmt.Sprintf("zone_%s", d.Name)
}

// TableLocation returns the deterministic storage location for a table
// belonging to database d.
func TableLocation(d *Database, t *Table) string {
	return fmt.Sprintf("s3://%s/%s", BucketName(d), t.Name)
}
