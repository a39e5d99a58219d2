// Package schema defines the canonical data types for a style recommendation set.
package schema

// OutfitCategory is the occasion an outfit is requested for. Categories are
// asked for in the prompt but never checked on the way back.
type OutfitCategory string

const (
	CategoryCasual OutfitCategory = "Casual"
	CategoryFormal OutfitCategory = "Formal"
	CategoryParty  OutfitCategory = "Party"
)

// OutfitCategories lists the requested occasions in prompt order.
var OutfitCategories = []OutfitCategory{CategoryCasual, CategoryFormal, CategoryParty}

// Requested item counts per section.
const (
	OutfitCount    = 3
	HairCount      = 2
	AccessoryCount = 2
)

// RecommendationSet is the top-level output document.
type RecommendationSet struct {
	Outfits     []Outfit    `json:"outfits"`
	Hair        []HairStyle `json:"hair"`
	Accessories []Accessory `json:"accessories"`
}

// Outfit is one recommended outfit. Keywords is a free-text shopping query.
type Outfit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// HairStyle is one recommended haircut or styling.
type HairStyle struct {
	Style       string `json:"style"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Accessory is one recommended accessory.
type Accessory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Len returns the number of items in each section.
func (s *RecommendationSet) Len() (outfits, hair, accessories int) {
	if s == nil {
		return 0, 0, 0
	}
	return len(s.Outfits), len(s.Hair), len(s.Accessories)
}
