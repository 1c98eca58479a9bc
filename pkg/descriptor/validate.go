package descriptor

import "regexp"

// NamePattern constrains database and table names: every character must be
// a lowercase letter, digit or underscore, so names compose cleanly into
// bucket and catalog names.
var NamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ColumnNamePattern constrains table column names.
var ColumnNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
