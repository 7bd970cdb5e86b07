package devdocs

import (
	"errors"
	"fmt"
)

// ErrInvalidReference is returned for docset slugs or entry paths that do not
// name a single DevDocs resource.
var ErrInvalidReference = errors.New("invalid reference")

// Docset is one documentation set as listed by the DevDocs API.
type Docset struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Release string `json:"release,omitempty"`
}

// ReleaseOrLatest returns the docset release, or "latest" when it has none.
func (d Docset) ReleaseOrLatest() string {
	if d.Release == "" {
		return "latest"
	}
	return d.Release
}

// Entry is a page within a docset. Path may end in a #fragment naming a
// section of the page.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// EntryManifest is the index of a docset's entries.
type EntryManifest struct {
	Entries []Entry `json:"entries"`
}

// Document is the documentation of one entry, converted to Markdown.
type Document struct {
	Docset   string
	Path     string
	Markdown string
}

// DocsetNotFoundError is returned when the API has no index for a docset.
type DocsetNotFoundError struct {
	Slug string
	Err  error
}

func (e *DocsetNotFoundError) Error() string {
	return fmt.Sprintf("docset %q not found", e.Slug)
}

func (e *DocsetNotFoundError) Unwrap() error {
	return e.Err
}

// DocumentNotFoundError is returned when a docset has no page at a path.
type DocumentNotFoundError struct {
	Slug string
	Path string
	Err  error
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found in docset %q", e.Path, e.Slug)
}

func (e *DocumentNotFoundError) Unwrap() error {
	return e.Err
}
