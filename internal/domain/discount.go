package domain

import (
	"math"
	"sort"
)

// DiscountTier grants a percentage off the whole cart once the cart holds
// at least MinQuantity photos. Tiers never stack: only the single
// highest-qualifying tier applies.
type DiscountTier struct {
	ID          string  `json:"id"`
	MinQuantity int     `json:"min_quantity"`
	Percentage  float64 `json:"percentage"`
}

type CartPricing struct {
	Subtotal       float64       `json:"subtotal"`
	DiscountAmount float64       `json:"discount_amount"`
	Total          float64       `json:"total"`
	AppliedTier    *DiscountTier `json:"applied_tier,omitempty"`
}

func Subtotal(items []CartItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.UnitPrice
	}
	return sum
}

// ApplicableTier returns the tier with the greatest MinQuantity not
// exceeding itemCount, or nil when no tier qualifies. Duplicate
// MinQuantity values are not expected in configuration; the sort is
// stable so the first configured duplicate wins.
func ApplicableTier(tiers []DiscountTier, itemCount int) *DiscountTier {
	if itemCount == 0 || len(tiers) == 0 {
		return nil
	}

	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity > sorted[j].MinQuantity
	})

	for i := range sorted {
		if itemCount >= sorted[i].MinQuantity {
			return &sorted[i]
		}
	}
	return nil
}

// PriceCart computes subtotal, discount and total for the cart.
// total = subtotal - subtotal*percentage/100, rounded to cents.
func PriceCart(items []CartItem, tiers []DiscountTier) CartPricing {
	subtotal := Round2(Subtotal(items))
	tier := ApplicableTier(tiers, len(items))

	var discount float64
	if tier != nil {
		discount = Round2(subtotal * tier.Percentage / 100)
	}

	return CartPricing{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          Round2(subtotal - discount),
		AppliedTier:    tier,
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
