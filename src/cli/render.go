package cli

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// RenderText lists results one per line in presentation order.
// Headings and descriptions arrive with inline HTML and are flattened to plain text.
func RenderText(state types.State) string {
	var b strings.Builder

	if state.Loading {
		b.WriteString("loading...\n")
	}

	for i, result := range state.Results {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, plainText(result.Heading), result.Addon.Slug)
		if result.IsRecommendation {
			b.WriteString(" [recommended]")
		}

		if platforms := platformsWithFiles(result.Addon); len(platforms) > 0 {
			b.WriteString(" platforms: " + strings.Join(platforms, ", "))
		}
		b.WriteString("\n")

		if result.Description != nil {
			if description := plainText(*result.Description); description != "" {
				b.WriteString("   " + description + "\n")
			}
		}
	}

	return b.String()
}

// platformsWithFiles names the known platforms that carry a file, in AllPlatforms order
func platformsWithFiles(addon types.Addon) []string {
	var platforms []string
	for _, platform := range types.AllPlatforms {
		if addon.PlatformFiles.Get(platform) != nil {
			platforms = append(platforms, string(platform))
		}
	}
	return platforms
}

// plainText strips markup and collapses whitespace
func plainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
