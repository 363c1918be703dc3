package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy controls how the tax amount is brought to whole currency units.
type Policy int

const (
	Round Policy = iota
	Truncate
	Ceiling
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "round":
		return Round, nil
	case "truncate":
		return Truncate, nil
	case "ceiling":
		return Ceiling, nil
	}
	return 0, fmt.Errorf("unknown rounding policy %q", s)
}

// Item is one priced cart line.
type Item struct {
	Price    decimal.Decimal
	Quantity int
}

// Quote is the computed price breakdown for a set of items.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute derives subtotal, tax and total for the given items. Pure: no
// side effects, usable for both a live cart preview and a final order
// snapshot. Tax is subtotal x rate rounded to whole units under the policy.
func Compute(items []Item, rate decimal.Decimal, policy Policy) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	tax := applyPolicy(subtotal.Mul(rate), policy)

	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func applyPolicy(d decimal.Decimal, policy Policy) decimal.Decimal {
	switch policy {
	case Truncate:
		return d.Truncate(0)
	case Ceiling:
		return d.RoundCeil(0)
	default:
		return d.Round(0)
	}
}
