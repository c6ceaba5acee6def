package measure

import (
	"errors"
	"slices"
)

// ErrEmptyAssortment is returned when min or max is requested from an
// assortment without members.
var ErrEmptyAssortment = errors.New("assortment is empty")

// Assortment is the ordered set of measurements found in one source string.
// Members keep discovery order until a unit is resolved, after which they are
// sorted ascending by centimeters.
type Assortment struct {
	measurements []*Measurement
}

// NewAssortment creates an empty assortment.
func NewAssortment() *Assortment {
	return &Assortment{}
}

// Add appends a measurement.
func (a *Assortment) Add(m *Measurement) {
	a.measurements = append(a.measurements, m)
}

// Len returns the number of members.
func (a *Assortment) Len() int {
	return len(a.measurements)
}

// IsEmpty reports whether the assortment has no members.
func (a *Assortment) IsEmpty() bool {
	return len(a.measurements) == 0
}

// Measurements returns the members in their current order.
func (a *Assortment) Measurements() []*Measurement {
	return slices.Clone(a.measurements)
}

// Raws returns the raw text of every member.
func (a *Assortment) Raws() []string {
	raws := make([]string, len(a.measurements))
	for i, m := range a.measurements {
		raws[i] = m.Raw
	}

	return raws
}

// Notations returns the notation of every member.
func (a *Assortment) Notations() []Notation {
	notations := make([]Notation, len(a.measurements))
	for i, m := range a.measurements {
		notations[i] = m.Notation
	}

	return notations
}

// ResolveUnit resolves every member with unit. It succeeds only when all
// members resolve; otherwise every member is left unresolved. An empty
// assortment never resolves.
func (a *Assortment) ResolveUnit(unit string) bool {
	if a.IsEmpty() {
		return false
	}

	for _, m := range a.measurements {
		if !m.Resolve(unit) {
			for _, r := range a.measurements {
				r.reset()
			}

			return false
		}
	}

	slices.SortStableFunc(a.measurements, func(x, y *Measurement) int {
		c, _ := x.Compare(y)
		return c
	})

	return true
}

// Min returns the smallest member.
func (a *Assortment) Min() (*Measurement, error) {
	return a.extreme(-1)
}

// Max returns the largest member.
func (a *Assortment) Max() (*Measurement, error) {
	return a.extreme(1)
}

func (a *Assortment) extreme(sign int) (*Measurement, error) {
	if a.IsEmpty() {
		return nil, ErrEmptyAssortment
	}

	best := a.measurements[0]
	if !best.resolved {
		return nil, ErrUnresolved
	}

	for _, m := range a.measurements[1:] {
		c, err := m.Compare(best)
		if err != nil {
			return nil, err
		}

		if c == sign {
			best = m
		}
	}

	return best, nil
}
