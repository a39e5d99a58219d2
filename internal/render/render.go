// Package render produces output from a recommendation set.
package render

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/schema"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// Render dispatches on format. "markdown" is accepted as an alias for "md".
func Render(format string, set *schema.RecommendationSet, p profile.Profile) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return RenderJSON(set)
	case FormatMarkdown, "markdown":
		if set == nil {
			return nil, fmt.Errorf("render: nil recommendation set")
		}
		return []byte(RenderMarkdown(set, p)), nil
	default:
		return nil, fmt.Errorf("render: unknown format %q (use json or md)", format)
	}
}

// RenderJSON produces a pretty-printed JSON representation of the set.
func RenderJSON(set *schema.RecommendationSet) ([]byte, error) {
	if set == nil {
		return nil, fmt.Errorf("render: nil recommendation set")
	}
	b, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown style guide. Every
// item's keywords become a shopping search link.
func RenderMarkdown(set *schema.RecommendationSet, p profile.Profile) string {
	if set == nil {
		return ""
	}
	p = profile.Normalize(p)

	var sb strings.Builder

	sb.WriteString("## Style Guide\n\n")
	fmt.Fprintf(&sb, "**Face Shape:** %s  \n", mdEscape(p.Shape))
	fmt.Fprintf(&sb, "**Skin Tone:** %s  \n", mdEscape(p.SkinTone))
	fmt.Fprintf(&sb, "**Gender:** %s\n\n", mdEscape(p.Gender))

	if len(set.Outfits) > 0 {
		sb.WriteString("## Outfits\n\n")
		sb.WriteString("| Name | Description | Shop |\n")
		sb.WriteString("|---|---|---|\n")
		for _, o := range set.Outfits {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", mdEscape(o.Name), mdEscape(o.Description), shopLink(o.Keywords))
		}
		sb.WriteString("\n")
	}

	if len(set.Hair) > 0 {
		sb.WriteString("## Hair\n\n")
		for _, h := range set.Hair {
			fmt.Fprintf(&sb, "- **%s**: %s (%s)\n", mdEscape(h.Style), mdEscape(h.Description), shopLink(h.Keywords))
		}
		sb.WriteString("\n")
	}

	if len(set.Accessories) > 0 {
		sb.WriteString("## Accessories\n\n")
		for _, a := range set.Accessories {
			fmt.Fprintf(&sb, "- **%s**: %s (%s)\n", mdEscape(a.Name), mdEscape(a.Description), shopLink(a.Keywords))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// shopLink renders keywords as a Google Shopping search link.
func shopLink(keywords string) string {
	if strings.TrimSpace(keywords) == "" {
		return ""
	}
	q := url.Values{"tbm": {"shop"}, "q": {keywords}}
	return fmt.Sprintf("[%s](https://www.google.com/search?%s)", mdEscape(keywords), q.Encode())
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
