package synth

import "github.com/dshills/stylist/internal/schema"

// Fallback returns the fixed recommendation set served whenever generation
// fails. It does not depend on the profile. Each call returns a fresh copy,
// so callers may modify the result.
func Fallback() schema.RecommendationSet {
	return schema.RecommendationSet{
		Outfits: []schema.Outfit{
			{
				Name:        "Classic Chic",
				Description: "A clean everyday look built on timeless basics.",
				Keywords:    "classic white shirt blue jeans",
			},
			{
				Name:        "Sharp Tailoring",
				Description: "A well-fitted suit or dress for formal occasions.",
				Keywords:    "tailored navy suit or sheath dress",
			},
			{
				Name:        "Evening Elegance",
				Description: "A dark statement outfit for parties and evenings out.",
				Keywords:    "black evening dress or suit",
			},
		},
		Hair: []schema.HairStyle{
			{
				Style:       "Classic Cut",
				Description: "A balanced, low-maintenance cut that works for everyone.",
				Keywords:    "classic haircut",
			},
			{
				Style:       "Soft Layers",
				Description: "Light layering adds movement without extra styling.",
				Keywords:    "soft layered haircut",
			},
		},
		Accessories: []schema.Accessory{
			{
				Name:        "Watch",
				Description: "A timeless piece that suits any outfit.",
				Keywords:    "classic analog watch",
			},
			{
				Name:        "Leather Belt",
				Description: "A simple belt ties casual and formal looks together.",
				Keywords:    "brown leather belt",
			},
		},
	}
}
