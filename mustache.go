package mustache

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
)

// Compiler builds Templates with a shared set of options, via a fluent
// "With..." builder, per the teacher's own New()/With...()/CompileString
// pattern.
type Compiler struct {
	partial       PartialProvider
	escapeMode    EscapeMode
	valueStringer ValueStringer
}

// New returns a Compiler with default options (HTML escaping, no
// partials, no custom value stringer).
func New() *Compiler {
	return &Compiler{}
}

// WithPartials adds a partial provider and enables support for partials.
func (c *Compiler) WithPartials(pp PartialProvider) *Compiler {
	c.partial = pp
	return c
}

// WithValueStringer sets a function to convert resolved values to
// strings, useful for customizing how variables render.
func (c *Compiler) WithValueStringer(vs ValueStringer) *Compiler {
	c.valueStringer = vs
	return c
}

// WithEscapeMode sets the output mode to HTML, JSON, or raw (plain
// text). The default is HTML.
func (c *Compiler) WithEscapeMode(m EscapeMode) *Compiler {
	c.escapeMode = m
	return c
}

// CompileString compiles a Mustache template from a string.
func (c *Compiler) CompileString(data string) (*Template, error) {
	tokens, err := tokenize(data, "", "")
	if err != nil {
		return nil, err
	}
	nodes := buildSyntaxTree(tokens)
	return &Template{
		nodes:         nodes,
		partial:       c.partial,
		escapeMode:    c.escapeMode,
		valueStringer: c.valueStringer,
		newline:       dominantNewline(data),
	}, nil
}

// CompileFile compiles a Mustache template from a file.
func (c *Compiler) CompileFile(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return c.CompileString(string(data))
}

// ParseString compiles a mustache template string with default
// options. Equivalent to New().CompileString(data).
func ParseString(data string) (*Template, error) {
	return New().CompileString(data)
}

// A TagType represents the specific type of mustache tag that a Tag
// represents. The zero TagType is not a valid type.
type TagType uint

const (
	Invalid TagType = iota
	Variable
	Section
	InvertedSection
	Partial
)

func (t TagType) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "type" + strconv.Itoa(int(t))
}

var tagNames = []string{
	Invalid:         "Invalid",
	Variable:        "Variable",
	Section:         "Section",
	InvertedSection: "InvertedSection",
	Partial:         "Partial",
}

// Tag represents the different mustache tag types, for templates that
// want to introspect a compiled Template's structure rather than render
// it. Not all methods apply to all kinds of tags; use Type to find out
// which before calling a type-specific method.
type Tag interface {
	Type() TagType
	Name() string
	// Tags returns any child tags. It panics for tag types which cannot
	// contain child tags (i.e. variable and partial tags).
	Tags() []Tag
}

type nodeTag struct{ node SyntaxNode }

func (t nodeTag) Type() TagType {
	switch t.node.Kind {
	case NodeVariable:
		return Variable
	case NodePartial:
		return Partial
	case NodeSection:
		if t.node.Inverted {
			return InvertedSection
		}
		return Section
	default:
		return Invalid
	}
}

func (t nodeTag) Name() string { return t.node.Name }

func (t nodeTag) Tags() []Tag {
	if t.node.Kind != NodeSection {
		panic("mustache: Tags on " + t.Type().String() + " type")
	}
	return extractTags(t.node.Children)
}

func extractTags(nodes []SyntaxNode) []Tag {
	tags := make([]Tag, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case NodeVariable, NodeSection, NodePartial:
			tags = append(tags, nodeTag{n})
		}
	}
	return tags
}

// Template represents a compiled mustache template which can be used to
// render data.
type Template struct {
	nodes         []SyntaxNode
	partial       PartialProvider
	escapeMode    EscapeMode
	valueStringer ValueStringer
	newline       string
}

// Tags returns the mustache tags for the given template.
func (tmpl *Template) Tags() []Tag {
	return extractTags(tmpl.nodes)
}

type emptyPartials struct{}

func (emptyPartials) Get(string) (string, bool) { return "", false }

func (tmpl *Template) partials() PartialProvider {
	if tmpl.partial == nil {
		return emptyPartials{}
	}
	return tmpl.partial
}

func (tmpl *Template) newContext(stack []Value) *renderContext {
	return &renderContext{
		stack:         stack,
		partials:      tmpl.partials(),
		escapeMode:    tmpl.escapeMode,
		valueStringer: tmpl.valueStringer,
		newline:       tmpl.newline,
	}
}

// Frender renders the compiled template against data and writes the
// result to out.
func (tmpl *Template) Frender(out io.Writer, data Value) error {
	var buf bytes.Buffer
	if err := renderNodes(tmpl.nodes, tmpl.newContext([]Value{data}), &buf); err != nil {
		return err
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// Render renders the compiled template against data and returns the
// result.
func (tmpl *Template) Render(data Value) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Frender(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderInLayout renders tmpl against data, then renders layout with
// that output exposed as {{content}} alongside data itself — a name not
// shadowed by "content" still resolves against data, since both are
// pushed onto the same context stack.
func (tmpl *Template) RenderInLayout(layout *Template, data Value) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.FRenderInLayout(&buf, layout, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FRenderInLayout is RenderInLayout, writing to out instead of
// returning a string.
func (tmpl *Template) FRenderInLayout(out io.Writer, layout *Template, data Value) error {
	content, err := tmpl.Render(data)
	if err != nil {
		return err
	}
	wrapper := NewMapping(map[string]Value{"content": NewString(content)})
	var buf bytes.Buffer
	if err := renderNodes(layout.nodes, layout.newContext([]Value{data, wrapper}), &buf); err != nil {
		return err
	}
	_, err = out.Write(buf.Bytes())
	return err
}

// toJSONString renders a Value as a JSON literal, for use as a
// ValueStringer when a template's variables should emit valid JSON
// fragments rather than plain text (see JSONTemplate).
func toJSONString(v Value) (string, bool) {
	out, err := json.Marshal(valueToJSON(v))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func valueToJSON(v Value) interface{} {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindNumber:
		if v.IsInt() {
			return v.Int64()
		}
		return v.Float64()
	case KindString:
		return v.String()
	case KindSequence:
		seq := v.Sequence()
		out := make([]interface{}, len(seq))
		for i, e := range seq {
			out[i] = valueToJSON(e)
		}
		return out
	case KindMapping:
		m := v.Mapping()
		out := make(map[string]interface{}, len(m))
		for k, e := range m {
			out[k] = valueToJSON(e)
		}
		return out
	default:
		return nil
	}
}

// JSONTemplate compiles a template meant to produce a JSON fragment: it
// turns off HTML/JSON escaping (each variable is expected to already be
// valid JSON via toJSONString) and renders every variable as its JSON
// literal form instead of its plain string form.
func JSONTemplate(template string) (*Template, error) {
	return New().WithEscapeMode(EscapeRaw).WithValueStringer(toJSONString).CompileString(template)
}

// RenderJSON compiles template as a JSON-fragment template (see
// JSONTemplate) and renders it against data.
func RenderJSON(template string, data Value) (string, error) {
	tmpl, err := JSONTemplate(template)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data)
}

// Render is the one-shot library entry point: parse data as a Value
// (JSON, then YAML, then plain string), compile template against the
// given named partials, and render.
func Render(template, data string, partials map[string]string) (string, error) {
	val, err := LoadValue(data)
	if err != nil {
		return "", err
	}
	c := New()
	if len(partials) > 0 {
		c = c.WithPartials(StaticProvider{Partials: partials})
	}
	tmpl, err := c.CompileString(template)
	if err != nil {
		return "", err
	}
	return tmpl.Render(val)
}
