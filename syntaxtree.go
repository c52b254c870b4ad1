package mustache

import "strings"

// NodeKind discriminates the variant held by a SyntaxNode, per §3/§4.B.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeVariable
	NodePartial
	NodeComment
	NodeDelimiter
	NodeSection
)

// SyntaxNode is one node of the tree the builder produces from a flat
// Token sequence. As with Value and Token, it is a tagged sum: only the
// fields relevant to Kind are populated.
type SyntaxNode struct {
	Kind NodeKind

	Text string // NodeText

	Name    string // NodeVariable / NodePartial / NodeSection
	Escaped bool   // NodeVariable

	Indent     int  // NodePartial
	Standalone bool // NodeComment / NodeDelimiter / NodePartial

	Inverted        bool // NodeSection
	Children        []SyntaxNode
	OpenStandalone  bool // NodeSection
	CloseStandalone bool // NodeSection
}

// buildSyntaxTree folds a flat Token sequence into a nested SyntaxNode
// forest, per §4.B. Standalone classification and whitespace
// normalization both operate on the flat sequence before nesting — this
// is what lets a standalone section's open/close tags reach across the
// section boundary into its first/last child text, exactly as spec'd.
func buildSyntaxTree(tokens []Token) []SyntaxNode {
	standalone, partialIndent := classifyAndTrim(tokens)
	return fold(tokens, standalone, partialIndent)
}

// classifyAndTrim computes, for every non-Text/non-Variable token, its
// standalone flag (§4.B), and for Partial tokens its indent (the
// horizontal whitespace run preceding it on its own line, measured
// before that whitespace is trimmed away). It mutates tokens' Text
// fields in place to apply the whitespace-normalization rules.
func classifyAndTrim(tokens []Token) (standalone []bool, partialIndent []int) {
	standalone = make([]bool, len(tokens))
	partialIndent = make([]int, len(tokens))

	for i, tok := range tokens {
		if tok.Kind == TokText || tok.Kind == TokVariable {
			continue
		}

		left := standaloneLeft(tokens, i)
		right, wsFragmentIdx, newlineTextIdx := standaloneRight(tokens, i)
		isStandalone := left && right
		standalone[i] = isStandalone

		if !isStandalone {
			continue
		}

		if i > 0 && tokens[i-1].Kind == TokText {
			before := tokens[i-1].Text
			stripped := strings.TrimRight(before, " \t")
			if tok.Kind == TokPartial {
				partialIndent[i] = len(before) - len(stripped)
			}
			tokens[i-1].Text = stripped
		}

		if wsFragmentIdx != -1 {
			tokens[wsFragmentIdx].Text = ""
		}
		if newlineTextIdx != -1 {
			tokens[newlineTextIdx].Text = stripLeadingMarkerText(tokens[newlineTextIdx].Text)
		}
	}

	return standalone, partialIndent
}

// standaloneLeft implements §4.B's "preceding Text" condition: it ends
// with a newline marker followed by horizontal whitespace to the end of
// that Text, or the tag is the first token of the template and any
// preceding text is whitespace-only.
func standaloneLeft(tokens []Token, i int) bool {
	if i == 0 {
		return true
	}
	prev := tokens[i-1]
	if prev.Kind != TokText {
		return false
	}
	hasMarker, rest := stripLeadingMarker(prev.Text)
	if hasMarker {
		return isAllHorizontalWS(rest)
	}
	return i == 1 && isAllHorizontalWS(prev.Text)
}

// standaloneRight implements §4.B's "following Text" condition: it
// begins with a newline marker, or the tag is the last token. A single
// intervening Text token that is pure trailing horizontal whitespace
// (the tag's own same-line trailing whitespace, produced by the Text
// splitter as its own chunk because it has no newline of its own) is
// looked past, mirroring how standaloneLeft already absorbs such
// whitespace when it is *not* split off (because it is adjacent, not a
// separate chunk, on the left side).
func standaloneRight(tokens []Token, i int) (ok bool, wsFragmentIdx int, newlineTextIdx int) {
	wsFragmentIdx, newlineTextIdx = -1, -1
	j := i + 1
	if j < len(tokens) && tokens[j].Kind == TokText {
		hasMarker, _ := stripLeadingMarker(tokens[j].Text)
		if !hasMarker && isAllHorizontalWS(tokens[j].Text) {
			wsFragmentIdx = j
			j++
		}
	}
	if j >= len(tokens) {
		return true, wsFragmentIdx, -1
	}
	if tokens[j].Kind != TokText {
		return false, -1, -1
	}
	hasMarker, _ := stripLeadingMarker(tokens[j].Text)
	if !hasMarker {
		return false, -1, -1
	}
	return true, wsFragmentIdx, j
}

// stripLeadingMarker reports whether s begins with a newline marker
// ("\r\n" or "\n") and, if so, returns the text following that marker.
func stripLeadingMarker(s string) (bool, string) {
	if strings.HasPrefix(s, "\r\n") {
		return true, s[2:]
	}
	if strings.HasPrefix(s, "\n") {
		return true, s[1:]
	}
	return false, s
}

func stripLeadingMarkerText(s string) string {
	_, rest := stripLeadingMarker(s)
	return rest
}

// isAllHorizontalWS reports whether s consists entirely of spaces and
// tabs (true for the empty string).
func isAllHorizontalWS(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

type sectionMetaEntry struct {
	name           string
	inverted       bool
	openStandalone bool
}

// fold nests the flat, already-classified token sequence into a
// SyntaxNode forest using a stack of in-progress children lists, per
// §4.B "Construction". The tokenizer already validated section balance,
// so every OpenSection here is guaranteed a matching CloseSection.
func fold(tokens []Token, standalone []bool, partialIndent []int) []SyntaxNode {
	containers := [][]SyntaxNode{{}}
	var sections []sectionMetaEntry

	top := func() int { return len(containers) - 1 }
	push := func(n SyntaxNode) {
		t := top()
		containers[t] = append(containers[t], n)
	}

	for i, tok := range tokens {
		switch tok.Kind {
		case TokText:
			if tok.Text == "" {
				continue
			}
			push(SyntaxNode{Kind: NodeText, Text: tok.Text})
		case TokVariable:
			push(SyntaxNode{Kind: NodeVariable, Name: tok.Name, Escaped: tok.Escaped})
		case TokComment:
			push(SyntaxNode{Kind: NodeComment, Standalone: standalone[i]})
		case TokDelimiterChange:
			push(SyntaxNode{Kind: NodeDelimiter, Standalone: standalone[i]})
		case TokPartial:
			push(SyntaxNode{
				Kind:       NodePartial,
				Name:       tok.Name,
				Standalone: standalone[i],
				Indent:     partialIndent[i],
			})
		case TokOpenSection:
			containers = append(containers, []SyntaxNode{})
			sections = append(sections, sectionMetaEntry{
				name:           tok.Name,
				inverted:       tok.Inverted,
				openStandalone: standalone[i],
			})
		case TokCloseSection:
			children := containers[top()]
			containers = containers[:top()]
			meta := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			push(SyntaxNode{
				Kind:            NodeSection,
				Name:            meta.name,
				Inverted:        meta.inverted,
				Children:        children,
				OpenStandalone:  meta.openStandalone,
				CloseStandalone: standalone[i],
			})
		}
	}

	return containers[0]
}
