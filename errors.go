package mustache

import "fmt"

// ErrorKind classifies a ParseError, per §7.
type ErrorKind int

const (
	// MissingDelimiter: a delimiter-change tag did not contain two
	// whitespace-separated delimiter strings.
	MissingDelimiter ErrorKind = iota
	// MissingEndTag: an unclosed tag run, or a close-section whose name
	// does not match the innermost open section.
	MissingEndTag
	// BadTag: an unknown tag sigil or malformed tag interior.
	BadTag
	// DataParse: the external data/partials parser rejected the input.
	DataParse
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDelimiter:
		return "missing delimiter"
	case MissingEndTag:
		return "missing end tag"
	case BadTag:
		return "bad tag"
	case DataParse:
		return "data parse error"
	default:
		return "unknown error"
	}
}

// ParseError is returned by Compile/Render whenever the tokenizer or
// syntax-tree builder rejects a template.
type ParseError struct {
	Kind    ErrorKind
	Line    int
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes an underlying library error (e.g. from encoding/json or
// gopkg.in/yaml.v2) for errors.Is/errors.As.
func (e *ParseError) Unwrap() error { return e.Wrapped }
