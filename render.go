package mustache

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
)

// EscapeMode controls how an escaped variable tag's value is written,
// per §4.C and SPEC_FULL.md's "Supplemented features". Raw mode forces
// even {{x}} tags to write their value unescaped.
type EscapeMode int

const (
	EscapeHTML EscapeMode = iota
	EscapeJSON
	EscapeRaw
)

// ValueStringer lets a caller override how a resolved Value is turned
// into its rendered string, before escaping is applied. It returns ok
// == false to fall back to Value.String().
type ValueStringer func(Value) (string, bool)

// PartialProvider resolves a partial's template body by name. A missing
// partial is not an error — §4.C "missing variables/partials are
// silent" — callers report absence via ok == false.
type PartialProvider interface {
	Get(name string) (string, bool)
}

// renderContext is threaded through the render walk. Every section push
// has a matching pop on every exit path, including error returns, so it
// never leaks stack depth across siblings.
type renderContext struct {
	stack         []Value
	partials      PartialProvider
	escapeMode    EscapeMode
	valueStringer ValueStringer
	newline       string
}

func (c *renderContext) push(v Value) { c.stack = append(c.stack, v) }
func (c *renderContext) pop()         { c.stack = c.stack[:len(c.stack)-1] }

// dominantNewline picks the template's prevailing line ending, ties
// favoring CRLF, for use when synthesizing new line breaks (there are
// none at present, but the renderer carries this per the data model so
// a future literal-newline-producing feature doesn't need re-plumbing).
func dominantNewline(template string) string {
	crlf := strings.Count(template, "\r\n")
	lf := strings.Count(template, "\n") - crlf
	if crlf >= lf {
		return "\r\n"
	}
	return "\n"
}

// renderNodes writes the rendered form of nodes to buf using ctx.
func renderNodes(nodes []SyntaxNode, ctx *renderContext, buf *bytes.Buffer) error {
	for _, n := range nodes {
		if err := renderNode(n, ctx, buf); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(n SyntaxNode, ctx *renderContext, buf *bytes.Buffer) error {
	switch n.Kind {
	case NodeText:
		buf.WriteString(n.Text)

	case NodeComment, NodeDelimiter:
		// No output.

	case NodeVariable:
		val, ok := resolveName(ctx.stack, n.Name)
		if !ok {
			return nil
		}
		writeValue(val, n.Escaped, ctx, buf)

	case NodePartial:
		body, ok := ctx.partials.Get(n.Name)
		if !ok {
			return nil
		}
		indented := applyIndent(body, n.Indent)
		tokens, err := tokenize(indented, "", "")
		if err != nil {
			return err
		}
		children := buildSyntaxTree(tokens)
		return renderNodes(children, ctx, buf)

	case NodeSection:
		val, ok := resolveName(ctx.stack, n.Name)
		truthy := ok && val.Truthy()

		if n.Inverted {
			if !truthy {
				return renderNodes(n.Children, ctx, buf)
			}
			return nil
		}
		if !truthy {
			return nil
		}
		if val.Kind() == KindSequence {
			for _, elem := range val.Sequence() {
				ctx.push(elem)
				err := renderNodes(n.Children, ctx, buf)
				ctx.pop()
				if err != nil {
					return err
				}
			}
			return nil
		}
		ctx.push(val)
		err := renderNodes(n.Children, ctx, buf)
		ctx.pop()
		return err
	}
	return nil
}

// writeValue stringifies val (via ctx.valueStringer if set, else
// Value.String) and writes it to buf, escaped per escaped/ctx.escapeMode.
func writeValue(val Value, escaped bool, ctx *renderContext, buf *bytes.Buffer) {
	s := val.String()
	if ctx.valueStringer != nil {
		if custom, ok := ctx.valueStringer(val); ok {
			s = custom
		}
	}
	if !escaped || ctx.escapeMode == EscapeRaw {
		buf.WriteString(s)
		return
	}
	if ctx.escapeMode == EscapeJSON {
		JSONEscape(buf, s)
		return
	}
	template.HTMLEscape(buf, []byte(s))
}

// resolveName resolves a (possibly dotted) name against the context
// stack, per §4.C. "." resolves to the top of the stack. A literal key
// matching the whole dotted name, found on any frame, takes precedence
// over the segment-by-segment walk (the "shorthand" rule) — only then
// is the name split on "." and walked field-by-field from the frame
// where its first segment was found.
func resolveName(stack []Value, name string) (Value, bool) {
	if name == "." {
		if len(stack) == 0 {
			return Value{}, false
		}
		return stack[len(stack)-1], true
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if v, ok := stack[i].Field(name); ok {
			return v, true
		}
	}

	segs := strings.Split(name, ".")
	var cur Value
	found := false
	for i := len(stack) - 1; i >= 0; i-- {
		if v, ok := stack[i].Field(segs[0]); ok {
			cur = v
			found = true
			break
		}
	}
	if !found {
		return Value{}, false
	}
	for _, seg := range segs[1:] {
		v, ok := cur.Field(seg)
		if !ok {
			return Value{}, false
		}
		cur = v
	}
	return cur, true
}

// applyIndent prepends an indent-many-space prefix to every line of
// text, blank lines included, per §4.C partial indentation. The empty
// remainder after a final newline is left unindented, so a trailing
// newline is never followed by indent spaces.
func applyIndent(text string, indent int) string {
	if indent <= 0 || text == "" {
		return text
	}
	prefix := strings.Repeat(" ", indent)
	lines := strings.SplitAfter(text, "\n")
	var buf strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		buf.WriteString(prefix)
		buf.WriteString(line)
	}
	return buf.String()
}

// JSONEscape writes s to w with JSON string-literal escaping applied,
// ported from the teacher's control-character escaping writer and
// adapted to operate on a plain string instead of a reflect-derived
// one. Used by the EscapeJSON mode for embedding rendered values inside
// JSON-fragment templates.
func JSONEscape(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for i := len(hex); i < 4; i++ {
					buf.WriteByte('0')
				}
				buf.WriteString(hex)
				continue
			}
			buf.WriteRune(r)
		}
	}
}
