package devdocs

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// HTMLPreprocessor rewrites a parsed page before conversion.
type HTMLPreprocessor func(s *goquery.Selection)

// AddLanguageClassesToCodeBlocks turns DevDocs' data-language attributes
// into language-* classes, so code fences carry an info string.
func AddLanguageClassesToCodeBlocks(s *goquery.Selection) {
	s.Find("[data-language]").Each(func(i int, s *goquery.Selection) {
		lang, _ := s.Attr("data-language")
		s.AddClass("language-" + lang)
	})
}

// RemoveNavigation drops DevDocs' in-page link bars.
func RemoveNavigation(s *goquery.Selection) {
	s.Find("._links, nav").Remove()
}

// MarkdownConverter converts DevDocs HTML pages to Markdown.
type MarkdownConverter struct {
	Preprocessors []HTMLPreprocessor
}

func NewMarkdownConverter(preprocessors ...HTMLPreprocessor) *MarkdownConverter {
	return &MarkdownConverter{Preprocessors: preprocessors}
}

var DefaultMarkdownConverter = NewMarkdownConverter(
	RemoveNavigation,
	AddLanguageClassesToCodeBlocks,
)

func (m *MarkdownConverter) Convert(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	sel := doc.Selection
	for _, p := range m.Preprocessors {
		p(sel)
	}

	var buf bytes.Buffer
	for _, node := range sel.Nodes {
		md, err := htmltomarkdown.ConvertNode(node)
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
		}
		buf.Write(md)
	}

	return strings.TrimSpace(buf.String()), nil
}
