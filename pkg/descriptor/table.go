package descriptor

// ColumnType enumerates the catalog column types a table column may carry.
// Complex is a deliberately unsupported type: it is valid in the schema so
// validation has something to reject, mirroring the proof-of-concept
// "unsupported by the catalog" column kind the original design carried.
type ColumnType string

const (
	ColumnInt       ColumnType = "Int"
	ColumnLong      ColumnType = "Long"
	ColumnFloat     ColumnType = "Float"
	ColumnDouble    ColumnType = "Double"
	ColumnBoolean   ColumnType = "Boolean"
	ColumnString    ColumnType = "String"
	ColumnDate      ColumnType = "Date"
	ColumnTimestamp ColumnType = "Timestamp"
	ColumnComplex   ColumnType = "Complex"
)

// SupportedColumnTypes are the column kinds the catalog provisioner can
// represent. ColumnComplex is intentionally absent.
var SupportedColumnTypes = map[ColumnType]bool{
	ColumnInt:       true,
	ColumnLong:      true,
	ColumnFloat:     true,
	ColumnDouble:    true,
	ColumnBoolean:   true,
	ColumnString:    true,
	ColumnDate:      true,
	ColumnTimestamp: true,
}

// ColumnCodec names the storage encoding for a column; today it only
// carries the column's type tag.
type ColumnCodec struct {
	ColumnKind ColumnType `json:"kind"`
}

// Column is one ordered attribute of a TableDescriptor.
type Column struct {
	ColumnID string      `json:"id"`
	Name     string      `json:"name"`
	Summary  string      `json:"summary"`
	Codec    ColumnCodec `json:"codec"`
	Nullable bool        `json:"nullable"`
}

// Table is a logical table descriptor scoped to a parent database.
type Table struct {
	DescriptorID string   `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Summary      string   `json:"summary"`
	Database     string   `json:"database" validate:"required"`
	Columns      []Column `json:"columns"`
}

func (t *Table) ID() string { return t.DescriptorID }
func (t *Table) Kind() Kind { return KindTable }
