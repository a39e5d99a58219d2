// Package prompt turns a user profile into the fixed instruction text sent to
// the generation service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/schema"
)

// SystemInstruction is sent as the system message of every generation request.
const SystemInstruction = "You are a helpful fashion assistant that outputs JSON only."

// outputSchema is the JSON structure shown to the model.
const outputSchema = `{
  "outfits": [
    {"name": "Outfit Name", "description": "Brief description", "keywords": "search terms for google shopping"}
  ],
  "hair": [
    {"style": "Hairstyle Name", "description": "Why it suits them", "keywords": "hairstyle search terms"}
  ],
  "accessories": [
    {"name": "Accessory Name", "description": "Why it suits them", "keywords": "accessory search terms"}
  ]
}`

// Build returns the user prompt for p. Missing attributes are replaced by
// profile.StandardDefaults first. The result depends only on p.
func Build(p profile.Profile) string {
	p = profile.Normalize(p)

	var sb strings.Builder

	sb.WriteString("You are a high-end fashion stylist. ")
	sb.WriteString("Create a personalized style guide for a user with these attributes:\n")
	fmt.Fprintf(&sb, "- Face Shape: %s\n", p.Shape)
	fmt.Fprintf(&sb, "- Skin Tone: %s\n", p.SkinTone)
	fmt.Fprintf(&sb, "- Gender: %s\n\n", p.Gender)

	sb.WriteString("Provide the response in strict JSON format with the following structure:\n")
	sb.WriteString(outputSchema)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Provide exactly %d outfit recommendations (%s), ", schema.OutfitCount, categoryList())
	fmt.Fprintf(&sb, "exactly %d hair recommendations, ", schema.HairCount)
	fmt.Fprintf(&sb, "and exactly %d accessory recommendations.\n", schema.AccessoryCount)
	sb.WriteString("Every field must be a non-empty string.\n")
	sb.WriteString("Do not include any markdown formatting, just the raw JSON string.")

	return sb.String()
}

// categoryList renders the outfit categories as "1 Casual, 1 Formal, 1 Party".
func categoryList() string {
	parts := make([]string, len(schema.OutfitCategories))
	for i, c := range schema.OutfitCategories {
		parts[i] = "1 " + string(c)
	}
	return strings.Join(parts, ", ")
}
