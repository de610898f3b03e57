package types

// ModelDescriptor is the raw, source-independent description of one model as
// produced by a schema source. Relation targets are model names and are only
// resolved when the graph is built.
type ModelDescriptor struct {
	Name   string            `json:"name" yaml:"name"`
	DBName string            `json:"db_name,omitempty" yaml:"db_name,omitempty"`
	Fields []FieldDescriptor `json:"fields" yaml:"fields"`
}

type FieldDescriptor struct {
	Name          string              `json:"name" yaml:"name"`
	Type          string              `json:"type" yaml:"type"`
	Required      bool                `json:"required,omitempty" yaml:"required,omitempty"`
	ID            bool                `json:"id,omitempty" yaml:"id,omitempty"`
	AutoIncrement bool                `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Relation      *RelationDescriptor `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// RelationDescriptor is a forward foreign-key reference. From defaults to the
// owning field when empty; To defaults to the target's primary key.
type RelationDescriptor struct {
	Target string   `json:"target" yaml:"target"`
	From   []string `json:"from,omitempty" yaml:"from,omitempty"`
	To     []string `json:"to,omitempty" yaml:"to,omitempty"`
}

// Field types understood by the generator. Sources map their native column
// types onto these.
const (
	FieldString   = "String"
	FieldInt      = "Int"
	FieldBigInt   = "BigInt"
	FieldFloat    = "Float"
	FieldDecimal  = "Decimal"
	FieldBoolean  = "Boolean"
	FieldDateTime = "DateTime"
	FieldJSON     = "Json"
	FieldBytes    = "Bytes"
	FieldUUID     = "Uuid"
)

type SchemaTable struct {
	Name        string
	Columns     []SchemaColumn
	ForeignKeys []ForeignKey
}

type SchemaColumn struct {
	Name            string
	Type            string
	Nullable        bool
	Default         string
	IsPrimary       bool
	IsUnique        bool
	IsAutoIncrement bool
}

// ForeignKey is a possibly composite constraint; Columns and RefColumns are
// positionally paired.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
	OnDelete   string
}
