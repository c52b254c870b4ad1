package mustache

import "testing"

// TestEndToEndScenarios exercises the library's package-level Render
// entry point end to end, covering escaping, section iteration,
// standalone comments, partial indentation, and delimiter changes.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name     string
		template string
		data     string
		partials map[string]string
		want     string
	}{
		{
			name:     "plain interpolation",
			template: `Hello, {{name}}!`,
			data:     `{"name": "World"}`,
			want:     "Hello, World!",
		},
		{
			name:     "raw vs escaped interpolation",
			template: "<{{&h}}>\n<{{h}}>",
			data:     `{"h": "a<b"}`,
			want:     "<a<b>\n<a&lt;b>",
		},
		{
			name:     "section iteration over a sequence",
			template: "{{#items}}- {{.}}\n{{/items}}",
			data:     `{"items": ["a", "b", "c"]}`,
			want:     "- a\n- b\n- c\n",
		},
		{
			name:     "standalone comment leaves no blank line",
			template: "Hi\n  {{! comment }}\nX",
			data:     `{}`,
			want:     "Hi\nX",
		},
		{
			name:     "standalone partial is indented",
			template: "  {{>p}}\n",
			data:     `{}`,
			// the mustache-spec convention for a partial's literal body is
			// that it carries its own trailing newline; the outer
			// standalone tag's own line terminator is swallowed, so the
			// partial's trailing newline is what ends the output.
			partials: map[string]string{"p": "line1\nline2\n"},
			want:     "  line1\n  line2\n",
		},
		{
			name:     "delimiter change",
			template: "{{=<% %>=}}<%x%>",
			data:     `{"x": 1}`,
			want:     "1",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Render(c.template, c.data, c.partials)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

// TestPropertyStandaloneStability: a standalone non-interpolation tag
// (here, a comment) sitting alone on its line, with indentation and its
// trailing newline, disappears entirely from the output — rendering
// with or without that line is textually identical.
func TestPropertyStandaloneStability(t *testing.T) {
	withComment := "before\n  {{! note }}\nafter"
	without := "before\nafter"

	got, err := Render(withComment, `{}`, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want, err := Render(without, `{}`, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != want {
		t.Errorf("standalone comment line changed output: got %q, want %q", got, want)
	}
}

// TestPropertyPartialIndentation: every line of a multi-line partial's
// expansion after the first gets the caller's indent prepended; the
// first line starts at that indent; the partial's own trailing newline
// is not itself followed by indent spaces.
func TestPropertyPartialIndentation(t *testing.T) {
	got, err := Render("   {{>p}}\n", `{}`, map[string]string{"p": "a\nb\nc\n"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "   a\n   b\n   c\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestPropertyTruthiness covers the truthiness law for every Value
// kind: falsy values render "N", truthy scalars/mappings render "Y"
// once, and a non-empty sequence renders "Y" once per element.
func TestPropertyTruthiness(t *testing.T) {
	tmpl, err := New().CompileString("{{#s}}Y{{/s}}{{^s}}N{{/s}}")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	cases := []struct {
		name string
		s    Value
		want string
	}{
		{"null", Null, "N"},
		{"false", NewBool(false), "N"},
		{"true", NewBool(true), "Y"},
		{"empty string", NewString(""), "N"},
		{"non-empty string", NewString("x"), "Y"},
		{"zero number", NewInt(0), "Y"},
		{"empty sequence", NewSequence(nil), "N"},
		{"non-empty sequence of 3", NewSequence([]Value{NewInt(1), NewInt(2), NewInt(3)}), "YYY"},
		{"empty mapping", NewMapping(map[string]Value{}), "N"},
		{"non-empty mapping", NewMapping(map[string]Value{"k": NewInt(1)}), "Y"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := tmpl.Render(NewMapping(map[string]Value{"s": c.s}))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if out != c.want {
				t.Errorf("s=%v: got %q, want %q", c.name, out, c.want)
			}
		})
	}
}

// TestPropertyDottedNameFallback covers §8 property 5 exactly.
func TestPropertyDottedNameFallback(t *testing.T) {
	tmpl, err := New().CompileString("{{a.b}}")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}

	out, err := tmpl.Render(mapping(map[string]Value{
		"a": mapping(map[string]Value{"b": NewInt(1)}),
	}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "1" {
		t.Errorf("got %q, want %q", out, "1")
	}

	out, err = tmpl.Render(mapping(map[string]Value{
		"a": mapping(map[string]Value{}),
	}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "" {
		t.Errorf("got %q, want empty string", out)
	}
}

// TestPropertyDelimiterIsolation: a delimiter change performed inside a
// partial does not leak into the caller — each partial is tokenized
// from a fresh default-delimiter state.
func TestPropertyDelimiterIsolation(t *testing.T) {
	got, err := Render("{{>p}}{{x}}", `{"x": "X", "y": "Y"}`, map[string]string{
		"p": "{{=<% %>=}}<%y%>",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "YX" {
		t.Errorf("got %q, want %q", got, "YX")
	}
}
