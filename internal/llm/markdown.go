package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/histia/harvest/internal/extract"
)

// maxPromptChars bounds the page excerpt handed to the model. Listing pages
// front-load their catalog, so truncating the tail loses little.
const maxPromptChars = 60000

// PageMarkdown converts rendered page HTML into markdown suitable for a model
// prompt. Scripts, styles and form chrome are stripped first; links are
// resolved against the page URL so extracted URLs come back absolute.
func PageMarkdown(pageHTML, pageURL string) (string, error) {
	cleaned, err := cleanHTML(pageHTML)
	if err != nil {
		return "", fmt.Errorf("failed to clean page HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			resolved := extract.ResolveURL(pageURL, href)
			str := fmt.Sprintf("[%s](%s)", selec.Text(), resolved)
			return &str
		},
	})

	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}

	return truncateToRune(strings.TrimSpace(markdown), maxPromptChars), nil
}

// truncateToRune cuts s to at most limit bytes, backing off to the previous
// rune boundary so a multi-byte character is never split.
func truncateToRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// cleanHTML removes non-content elements and strips attributes down to the
// link and image essentials.
func cleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch node.Data {
			case "a":
				if attr.Key == "href" || attr.Key == "title" {
					kept = append(kept, attr)
				}
			case "img":
				if attr.Key == "src" || attr.Key == "alt" {
					kept = append(kept, attr)
				}
			}
		}
		node.Attr = kept
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
