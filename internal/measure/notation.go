// Package measure provides scalar measurements parsed from catalog text and
// the assortments that group them.
package measure

import (
	"errors"
	"fmt"
)

// ErrUnknownNotation is returned when a notation name is not recognized.
var ErrUnknownNotation = errors.New("unknown notation")

// Notation is the lexical shape of a numeric token.
type Notation int

// Notations in matching priority order. Earlier entries win length ties.
const (
	PrimeDoublePrime Notation = iota
	Prime
	DecimalMixed
	Mixed
	Fraction
	Decimal
	Integer
)

var notationNames = [...]string{
	PrimeDoublePrime: "prime_double_prime",
	Prime:            "prime",
	DecimalMixed:     "decimal_mixed",
	Mixed:            "mixed",
	Fraction:         "fraction",
	Decimal:          "decimal",
	Integer:          "integer",
}

// Notations returns every notation in priority order.
func Notations() []Notation {
	return []Notation{PrimeDoublePrime, Prime, DecimalMixed, Mixed, Fraction, Decimal, Integer}
}

// ParseNotation maps a configuration name to its Notation.
func ParseNotation(name string) (Notation, error) {
	for i, n := range notationNames {
		if n == name {
			return Notation(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownNotation, name)
}

// String returns the configuration name of the notation.
func (n Notation) String() string {
	if n < 0 || int(n) >= len(notationNames) {
		return fmt.Sprintf("notation(%d)", int(n))
	}

	return notationNames[n]
}

// SelfDescribing reports whether the notation carries its own unit (feet and
// inches marks), so no unit column is needed to resolve it.
func (n Notation) SelfDescribing() bool {
	return n == PrimeDoublePrime || n == Prime
}
