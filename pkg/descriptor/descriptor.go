// Package descriptor defines the typed descriptor documents the control
// plane reconciles: databases, tables, and flows.
package descriptor

// Kind identifies which descriptor variant a document carries.
type Kind string

const (
	KindDatabase Kind = "database"
	KindTable    Kind = "table"
	KindFlow     Kind = "flow"
)

// Descriptor is implemented by every descriptor variant. The store and the
// control-loop runner operate on this interface so they never need a type
// switch over the concrete kind.
type Descriptor interface {
	ID() string
	Kind() Kind
}
