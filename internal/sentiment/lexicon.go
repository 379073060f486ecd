package sentiment

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Lexicon scores text by matching it against positive and negative term lists
// with a single Aho-Corasick automaton. A match directly preceded by a negator
// word ("not good") contributes to the opposite polarity.
//
// The score is (positive − negative) / (positive + negative) over matched
// terms, which lands in [-1, 1] by construction; text with no matches scores 0.
type Lexicon struct {
	matcher  *goahocorasick.Machine
	positive map[string]struct{}
	negative map[string]struct{}
	negators map[string]struct{}
}

// NewLexicon builds the automaton from the given term lists. Terms are matched
// case-insensitively on word boundaries.
func NewLexicon(positive, negative, negators []string) (*Lexicon, error) {
	l := &Lexicon{
		positive: make(map[string]struct{}, len(positive)),
		negative: make(map[string]struct{}, len(negative)),
		negators: make(map[string]struct{}, len(negators)),
	}

	patterns := make([][]rune, 0, len(positive)+len(negative))
	for _, term := range positive {
		norm := lowerRunes(term)
		l.positive[string(norm)] = struct{}{}
		patterns = append(patterns, norm)
	}
	for _, term := range negative {
		norm := lowerRunes(term)
		l.negative[string(norm)] = struct{}{}
		patterns = append(patterns, norm)
	}
	for _, term := range negators {
		l.negators[string(lowerRunes(term))] = struct{}{}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	l.matcher = m
	return l, nil
}

// Default returns a Lexicon over the built-in English term lists.
func Default() (*Lexicon, error) {
	return NewLexicon(defaultPositive, defaultNegative, defaultNegators)
}

// Analyze returns the polarity score for text.
func (l *Lexicon) Analyze(text string) float64 {
	runes := lowerRunes(text)
	if len(runes) == 0 {
		return 0
	}

	var pos, neg int
	for _, span := range l.matcher.MultiPatternSearch(runes, false) {
		start := span.Pos
		end := start + len(span.Word)
		if !isWordBoundary(runes, start, end) {
			continue
		}

		word := string(span.Word)
		polarity := 0
		if _, ok := l.positive[word]; ok {
			polarity = 1
		} else if _, ok := l.negative[word]; ok {
			polarity = -1
		}
		if polarity == 0 {
			continue
		}
		if l.negatedAt(runes, start) {
			polarity = -polarity
		}

		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

// negatedAt reports whether the word immediately before position start is a
// negator.
func (l *Lexicon) negatedAt(runes []rune, start int) bool {
	i := start - 1
	for i >= 0 && !isWordRune(runes[i]) {
		i--
	}
	end := i + 1
	for i >= 0 && isWordRune(runes[i]) {
		i--
	}
	if end == i+1 {
		return false
	}
	_, ok := l.negators[string(runes[i+1:end])]
	return ok
}

func isWordBoundary(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
