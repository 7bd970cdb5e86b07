package devdocs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/extkit/extkit/pkg/extension/fetch"
)

const (
	// DefaultOrigin is the public DevDocs deployment.
	DefaultOrigin = "https://devdocs.io"
	// DefaultDocumentsOrigin serves the HTML pages of every entry.
	DefaultDocumentsOrigin = "https://documents.devdocs.io"
)

// slugPattern matches DevDocs slugs such as "go", "css" or "python~3.12".
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.~+-]*$`)

// Client reads the DevDocs JSON API and documents of one deployment.
type Client struct {
	origin          string
	documentsOrigin string
	fetcher         fetch.Fetcher
}

func NewClient(cfg Config, fetcher fetch.Fetcher) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		origin:          strings.TrimRight(cfg.Origin, "/"),
		documentsOrigin: strings.TrimRight(cfg.DocumentsOrigin, "/"),
		fetcher:         fetcher,
	}
}

func (c *Client) Origin() string {
	return c.origin
}

// ListDocsets returns every docset the origin serves.
func (c *Client) ListDocsets(ctx context.Context) ([]Docset, error) {
	var docsets []Docset
	if err := fetch.GetJSON(ctx, c.fetcher, c.origin+"/docs/docs.json", &docsets); err != nil {
		return nil, fmt.Errorf("failed to list docsets: %w", err)
	}
	return docsets, nil
}

// ListEntries returns the entry index of a docset.
func (c *Client) ListEntries(ctx context.Context, docset string) (*EntryManifest, error) {
	if err := checkSlug(docset); err != nil {
		return nil, err
	}

	m := &EntryManifest{}
	err := fetch.GetJSON(ctx, c.fetcher, c.origin+"/docs/"+docset+"/index.json", m)
	if errors.Is(err, fetch.ErrNotFound) {
		return nil, &DocsetNotFoundError{Slug: docset, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of docset %q: %w", docset, err)
	}
	return m, nil
}

// GetDocument fetches the page of an entry and converts it to Markdown.
// A #fragment in path is ignored.
func (c *Client) GetDocument(ctx context.Context, docset, path string) (*Document, error) {
	if err := checkSlug(docset); err != nil {
		return nil, err
	}

	page, _, _ := strings.Cut(path, "#")
	escaped, err := escapePath(page)
	if err != nil {
		return nil, err
	}

	body, err := c.fetcher.Get(ctx, c.documentsOrigin+"/"+docset+"/"+escaped+".html")
	if errors.Is(err, fetch.ErrNotFound) {
		return nil, &DocumentNotFoundError{Slug: docset, Path: page, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %q of docset %q: %w", page, docset, err)
	}

	md, err := DefaultMarkdownConverter.Convert(body)
	if err != nil {
		return nil, err
	}

	return &Document{Docset: docset, Path: path, Markdown: md}, nil
}

// DocsetURL is the browser URL of a docset.
func (c *Client) DocsetURL(docset string) string {
	return c.origin + "/" + url.PathEscape(docset)
}

// EntryURL is the browser URL of an entry. Paths may carry a #fragment and
// are joined as is.
func (c *Client) EntryURL(docset, path string) string {
	return c.DocsetURL(docset) + "/" + path
}

func checkSlug(docset string) error {
	if !slugPattern.MatchString(docset) {
		return fmt.Errorf("docset %q: %w", docset, ErrInvalidReference)
	}
	return nil
}

// escapePath escapes every segment of a relative entry path and rejects
// paths that would leave the docset.
func escapePath(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("entry path %q: %w", path, ErrInvalidReference)
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" || s == "." || s == ".." {
			return "", fmt.Errorf("entry path %q: %w", path, ErrInvalidReference)
		}
		segments[i] = url.PathEscape(s)
	}

	return strings.Join(segments, "/"), nil
}
