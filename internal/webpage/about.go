package webpage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var aboutMarkers = []string{"about us", "our company"}

const sectionEnd = "</div>"

// AboutExtractor finds the part of a page that describes the company.
type AboutExtractor interface {
	ExtractAbout(page string) (string, bool)
}

// MarkerExtractor slices the raw page from the first "about us" (or "our
// company") to the next closing div. It works on markup as text.
type MarkerExtractor struct{}

func (MarkerExtractor) ExtractAbout(page string) (string, bool) {
	lower := asciiLower(page)
	for _, marker := range aboutMarkers {
		start := strings.Index(lower, marker)
		if start == -1 {
			continue
		}

		end := strings.Index(lower[start:], sectionEnd)
		if end == -1 {
			return page[start:], true
		}
		return page[start : start+end], true
	}

	return "", false
}

// asciiLower lower-cases ASCII letters only so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// SectionExtractor parses the page and returns the text of the section that
// holds an about marker. Navigation chrome is ignored. When nothing matches
// it falls back to MarkerExtractor.
type SectionExtractor struct{}

func (SectionExtractor) ExtractAbout(page string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err == nil {
		for _, marker := range aboutMarkers {
			if text := findSection(doc, marker); text != "" {
				return text, true
			}
		}
	}

	return MarkerExtractor{}.ExtractAbout(page)
}

func findSection(doc *goquery.Document, marker string) string {
	var text string
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(ownText(s)), marker) {
			return true
		}
		if s.Closest("nav, header, footer").Length() > 0 {
			return true
		}

		container := s.Closest("section, article")
		if container.Length() == 0 {
			container = s.Closest("div")
		}
		if container.Length() == 0 {
			container = s.Parent()
		}

		text = strings.Join(strings.Fields(container.Text()), " ")
		return text == ""
	})

	return text
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		for _, node := range c.Nodes {
			if node.Type == html.TextNode {
				b.WriteString(node.Data)
			}
		}
	})
	return b.String()
}
