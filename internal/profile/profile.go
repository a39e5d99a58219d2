// Package profile defines the user attributes that drive a style
// recommendation and the defaults applied when any of them is missing.
package profile

import "strings"

// Profile describes the user a recommendation is generated for. Values are
// opaque display strings and are passed to the prompt verbatim.
type Profile struct {
	Shape    string `json:"shape"`
	SkinTone string `json:"skin_tone"`
	Gender   string `json:"gender"`
}

// Defaults holds the substitute value for each missing attribute.
type Defaults struct {
	Shape    string
	SkinTone string
	Gender   string
}

// Unknown is the sentinel used for a missing face shape or skin tone.
const Unknown = "Unknown"

// Unspecified is the value used for a missing gender.
const Unspecified = "Unspecified"

// StandardDefaults are the defaults used by Normalize.
var StandardDefaults = Defaults{
	Shape:    Unknown,
	SkinTone: Unknown,
	Gender:   Unspecified,
}

// Map keys recognised by FromMap.
const (
	KeyShape    = "shape"
	KeySkinTone = "skin_tone"
	KeyGender   = "gender"
)

// FromMap builds a Profile from a loosely typed attribute mapping, such as the
// one returned by a face analyzer. Unknown keys are ignored.
func FromMap(m map[string]string) Profile {
	return Profile{
		Shape:    m[KeyShape],
		SkinTone: m[KeySkinTone],
		Gender:   m[KeyGender],
	}
}

// Map returns the profile as an attribute mapping.
func (p Profile) Map() map[string]string {
	return map[string]string{
		KeyShape:    p.Shape,
		KeySkinTone: p.SkinTone,
		KeyGender:   p.Gender,
	}
}

// Normalize applies StandardDefaults to p.
func Normalize(p Profile) Profile {
	return StandardDefaults.Apply(p)
}

// Apply fills every empty attribute of p with the corresponding default.
// A value made only of whitespace counts as empty. Present values are kept
// exactly as given.
func (d Defaults) Apply(p Profile) Profile {
	if strings.TrimSpace(p.Shape) == "" {
		p.Shape = d.Shape
	}
	if strings.TrimSpace(p.SkinTone) == "" {
		p.SkinTone = d.SkinTone
	}
	if strings.TrimSpace(p.Gender) == "" {
		p.Gender = d.Gender
	}
	return p
}
