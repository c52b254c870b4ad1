package mustache

import "testing"

func TestStandaloneLeftRight(t *testing.T) {
	// "a\n{{!c}}\nb" -> Text"a", Text"\n", Comment, Text"\nb"
	toks, err := tokenize("a\n{{!c}}\nb", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(toks) != 4 {
		t.Fatalf("got %d tokens, want 4: %+v", len(toks), toks)
	}
	commentIdx := 2
	if toks[commentIdx].Kind != TokComment {
		t.Fatalf("toks[%d] = %+v, want comment", commentIdx, toks[commentIdx])
	}
	if !standaloneLeft(toks, commentIdx) {
		t.Errorf("standaloneLeft: want true")
	}
	ok, wsIdx, nlIdx := standaloneRight(toks, commentIdx)
	if !ok {
		t.Errorf("standaloneRight: want true")
	}
	if wsIdx != -1 {
		t.Errorf("standaloneRight: wsFragmentIdx = %d, want -1", wsIdx)
	}
	if nlIdx != 3 {
		t.Errorf("standaloneRight: newlineTextIdx = %d, want 3", nlIdx)
	}
}

func TestStandaloneRightSkipsTrailingWhitespaceFragment(t *testing.T) {
	// "{{!c}}  \nafter" -> Comment, Text"  " (no marker, pure ws), Text"\nafter"
	toks, err := tokenize("{{!c}}  \nafter", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %+v", len(toks), toks)
	}
	ok, wsIdx, nlIdx := standaloneRight(toks, 0)
	if !ok {
		t.Fatalf("standaloneRight: want true")
	}
	if wsIdx != 1 {
		t.Errorf("wsFragmentIdx = %d, want 1", wsIdx)
	}
	if nlIdx != 2 {
		t.Errorf("newlineTextIdx = %d, want 2", nlIdx)
	}
}

func TestStandaloneRightFalseWhenFollowedByNonWhitespaceText(t *testing.T) {
	// "{{!c}}x" -> Comment, Text"x" (no marker, not all-whitespace)
	toks, err := tokenize("{{!c}}x", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	ok, _, _ := standaloneRight(toks, 0)
	if ok {
		t.Errorf("standaloneRight: want false when followed by non-whitespace text")
	}
}

func TestStandaloneLeftFalseMidline(t *testing.T) {
	// "x {{!c}}\n" -> Text"x " (not all-whitespace, no marker), Comment, Text"\n"
	toks, err := tokenize("x {{!c}}\n", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if standaloneLeft(toks, 1) {
		t.Errorf("standaloneLeft: want false, preceding text is not pure indentation")
	}
}

func TestStripLeadingMarker(t *testing.T) {
	cases := []struct {
		in       string
		hasMark  bool
		restWant string
	}{
		{"\r\nabc", true, "abc"},
		{"\nabc", true, "abc"},
		{"abc", false, "abc"},
		{"", false, ""},
	}
	for _, c := range cases {
		has, rest := stripLeadingMarker(c.in)
		if has != c.hasMark || rest != c.restWant {
			t.Errorf("stripLeadingMarker(%q) = (%v, %q), want (%v, %q)", c.in, has, rest, c.hasMark, c.restWant)
		}
	}
}

func TestIsAllHorizontalWS(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t \t", true},
		{" x ", false},
		{"\n", false},
	}
	for _, c := range cases {
		if got := isAllHorizontalWS(c.in); got != c.want {
			t.Errorf("isAllHorizontalWS(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

// TestFoldNestsSections confirms fold() builds a properly nested tree
// (not just a flat list).
func TestFoldNestsSections(t *testing.T) {
	toks, err := tokenize("{{#a}}{{b}}{{/a}}", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	nodes := buildSyntaxTree(toks)
	if len(nodes) != 1 {
		t.Fatalf("got %d top-level nodes, want 1: %+v", len(nodes), nodes)
	}
	sec := nodes[0]
	if sec.Kind != NodeSection || sec.Name != "a" {
		t.Fatalf("got %+v, want Section a", sec)
	}
	if len(sec.Children) != 1 || sec.Children[0].Kind != NodeVariable || sec.Children[0].Name != "b" {
		t.Errorf("children = %+v, want [Variable b]", sec.Children)
	}
}

func TestClassifyAndTrimPartialIndent(t *testing.T) {
	toks, err := tokenize("  {{>p}}\n", "", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	standalone, indent := classifyAndTrim(toks)
	var partialIdx = -1
	for i, tok := range toks {
		if tok.Kind == TokPartial {
			partialIdx = i
		}
	}
	if partialIdx == -1 {
		t.Fatalf("no partial token found in %+v", toks)
	}
	if !standalone[partialIdx] {
		t.Errorf("want partial classified standalone")
	}
	if indent[partialIdx] != 2 {
		t.Errorf("indent = %d, want 2", indent[partialIdx])
	}
}
