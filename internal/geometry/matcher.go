// Package geometry projects free-text catalog dimensions onto canonical
// centimeter fields.
package geometry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"catalogsize/internal/config"
	"catalogsize/internal/measure"
)

// Grammar errors.
var (
	ErrNoPatterns   = errors.New("grammar has no patterns")
	ErrPatternOrder = errors.New("patterns are not in notation priority order")
)

// separators may trail a matched token and are not part of its value.
const separators = "-x+/"

type notationPattern struct {
	notation measure.Notation
	re       *regexp.Regexp
}

// Grammar is the ordered list of notation patterns shared by the matcher and
// label extraction.
type Grammar struct {
	patterns []notationPattern
}

// NewGrammar compiles numerical patterns, which must follow notation priority
// order.
func NewGrammar(patterns []config.NumericalPattern) (*Grammar, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	g := &Grammar{patterns: make([]notationPattern, 0, len(patterns))}
	last := measure.Notation(-1)

	for i, p := range patterns {
		n, err := measure.ParseNotation(p.Notation)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}

		if n <= last {
			return nil, fmt.Errorf("%w: %s after %s", ErrPatternOrder, n, last)
		}

		last = n

		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, n, err)
		}

		g.patterns = append(g.patterns, notationPattern{notation: n, re: re})
	}

	return g, nil
}

// Matcher extracts measurements from dimension text.
type Matcher struct {
	grammar *Grammar
}

// NewMatcher creates a matcher over grammar.
func NewMatcher(grammar *Grammar) *Matcher {
	return &Matcher{grammar: grammar}
}

// Extract tokenizes text left to right. At each step every pattern is tried
// against the unconsumed suffix and the longest match wins, ties going to the
// earlier pattern. Consumed text is never matched again.
func (m *Matcher) Extract(text string) *measure.Assortment {
	a := measure.NewAssortment()
	rest := text

	for rest != "" {
		best := -1

		var bestLoc []int

		for i, p := range m.grammar.patterns {
			loc := p.re.FindStringIndex(rest)
			if loc == nil || loc[1] == loc[0] {
				continue
			}

			if bestLoc == nil || loc[1]-loc[0] > bestLoc[1]-bestLoc[0] {
				best, bestLoc = i, loc
			}
		}

		if best < 0 {
			break
		}

		raw := rest[bestLoc[0]:bestLoc[1]]
		if len(raw) > 1 && strings.ContainsRune(separators, rune(raw[len(raw)-1])) {
			raw = raw[:len(raw)-1]
		}

		a.Add(measure.NewMeasurement(raw, m.grammar.patterns[best].notation))
		rest = rest[bestLoc[1]:]
	}

	return a
}

// Strip removes every numeric token from text, leaving the label residue.
func (m *Matcher) Strip(text string) string {
	for _, p := range m.grammar.patterns {
		text = p.re.ReplaceAllString(text, " ")
	}

	return text
}
