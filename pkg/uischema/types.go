package uischema

// Store keeps the parsed operations from UI schema documents. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	operations map[string]Operation
}

// Operation describes the overlay for a single form operation.
type Operation struct {
	ID      string
	Source  string
	Title   string
	Summary string
	Success string
	Order   []string
	Fields  map[string]FieldConfig
}

// FieldConfig customises how a field reads and which messages it reports.
type FieldConfig struct {
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	Help        string            `json:"help" yaml:"help"`
	Widget      string            `json:"widget" yaml:"widget"`
	Options     []OptionConfig    `json:"options" yaml:"options"`
	Messages    map[string]string `json:"messages" yaml:"messages"`
}

// OptionConfig labels one enum value.
type OptionConfig struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}
