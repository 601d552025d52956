package response

import (
	"fmt"
	"strings"
)

// Band is one frequency region of the magnitude budget.
//
// A band with MaxRippleDB > 0 is a passband: every point inside must stay
// within +-MaxRippleDB of unity gain. A band with MinAttenDB > 0 is a
// stopband: every point inside must sit at least MinAttenDB below unity.
type Band struct {
	Low         float64
	High        float64
	MaxRippleDB float64
	MinAttenDB  float64
}

func (b Band) contains(freq float64) bool {
	return freq >= b.Low && freq <= b.High
}

// Violation records one frequency point that failed its band budget.
type Violation struct {
	Frequency   float64
	MagnitudeDB float64
	LimitDB     float64
	Band        Band
}

// BudgetError reports every point that violated the budget, not just the
// first. It blocks acceptance of a design but is not fatal to the pipeline.
type BudgetError struct {
	Violations []Violation
}

func (e *BudgetError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "response: budget check failed at %d point(s):", len(e.Violations))

	for i, v := range e.Violations {
		if i == 4 && len(e.Violations) > 5 {
			fmt.Fprintf(&sb, " ... and %d more", len(e.Violations)-i)
			break
		}

		fmt.Fprintf(&sb, " [%g Hz: %.2f dB, limit %.2f dB]", v.Frequency, v.MagnitudeDB, v.LimitDB)
	}

	return sb.String()
}

// CheckBudget compares each point's magnitude in dB against the budget of
// every band containing its frequency. Points outside all bands are ignored.
// On failure the returned *BudgetError lists all violations in point order.
func CheckBudget(points []Point, bands []Band) error {
	var violations []Violation

	for _, p := range points {
		magDB := p.MagnitudeDB()

		for _, b := range bands {
			if !b.contains(p.Frequency) {
				continue
			}

			if b.MaxRippleDB > 0 && (magDB > b.MaxRippleDB || magDB < -b.MaxRippleDB) {
				limit := b.MaxRippleDB
				if magDB < 0 {
					limit = -b.MaxRippleDB
				}

				violations = append(violations, Violation{
					Frequency:   p.Frequency,
					MagnitudeDB: magDB,
					LimitDB:     limit,
					Band:        b,
				})

				continue
			}

			if b.MinAttenDB > 0 && magDB > -b.MinAttenDB {
				violations = append(violations, Violation{
					Frequency:   p.Frequency,
					MagnitudeDB: magDB,
					LimitDB:     -b.MinAttenDB,
					Band:        b,
				})
			}
		}
	}

	if len(violations) > 0 {
		return &BudgetError{Violations: violations}
	}

	return nil
}
