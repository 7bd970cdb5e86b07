// Package devdocs is an extension searching the devdocs.io documentation.
package devdocs

import (
	"context"
	"fmt"
	"os"

	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/extkit/extkit/pkg/extension/sdk"
	"k8s.io/utils/ptr"
)

const (
	CommandSearchDocsets = "search-docsets"
	CommandSearchEntries = "search-entries"
	CommandShowEntry     = "show-entry"

	ParamDocset = "docset"
	ParamPath   = "path"

	// EnvOrigin overrides DefaultOrigin.
	EnvOrigin = "DEVDOCS_URL"
	// EnvDocumentsOrigin overrides DefaultDocumentsOrigin.
	EnvDocumentsOrigin = "DEVDOCS_DOCUMENTS_URL"
)

// Config locates a DevDocs deployment. Empty fields take the public defaults.
type Config struct {
	Origin          string
	DocumentsOrigin string
}

// ConfigFromEnv reads the origins from DEVDOCS_URL and DEVDOCS_DOCUMENTS_URL.
func ConfigFromEnv() Config {
	return Config{
		Origin:          os.Getenv(EnvOrigin),
		DocumentsOrigin: os.Getenv(EnvDocumentsOrigin),
	}
}

func (c Config) withDefaults() Config {
	if c.Origin == "" {
		c.Origin = DefaultOrigin
	}
	if c.DocumentsOrigin == "" {
		c.DocumentsOrigin = DefaultDocumentsOrigin
	}
	return c
}

// Manifest returns the extension manifest.
func Manifest() protocol.Manifest {
	return protocol.Manifest{
		Title:       "Devdocs",
		Description: "Search the devdocs.io documentation",
		Commands: []protocol.Command{
			{
				Name:  CommandSearchDocsets,
				Title: "Search docsets",
				Mode:  protocol.ModeFilter,
			},
			{
				Name:  CommandSearchEntries,
				Title: "Search entries",
				Mode:  protocol.ModeFilter,
				Params: []protocol.Input{
					{Type: protocol.InputString, Name: ParamDocset, Title: "Docset Slug"},
				},
			},
			{
				Name:        CommandShowEntry,
				Title:       "Show entry",
				Description: "Show the documentation of an entry as Markdown",
				Mode:        protocol.ModeDetail,
				Params: []protocol.Input{
					{Type: protocol.InputString, Name: ParamDocset, Title: "Docset Slug"},
					{Type: protocol.InputString, Name: ParamPath, Title: "Entry Path"},
				},
			},
		},
	}
}

// Extension wraps the SDK extension with the DevDocs deployment
type Extension struct {
	*sdk.Extension
	config Config
}

// New creates a new DevDocs extension reading from the deployment in cfg
func New(cfg Config, opts ...sdk.ExtensionOption) *Extension {
	ext := &Extension{config: cfg.withDefaults()}
	ext.Extension = sdk.NewExtension(Manifest(), opts...)

	ext.AddCommand(CommandSearchDocsets, ext.handleSearchDocsets)
	ext.AddCommand(CommandSearchEntries, ext.handleSearchEntries)
	ext.AddCommand(CommandShowEntry, ext.handleShowEntry)

	return ext
}

func (e *Extension) handleSearchDocsets(ctx context.Context, req *sdk.CommandRequest) (protocol.Response, error) {
	client := NewClient(e.config, req.Fetcher)

	docsets, err := client.ListDocsets(ctx)
	if err != nil {
		return nil, err
	}

	_ = e.LogDebug(ctx, "fetched docsets", map[string]any{"count": len(docsets), "origin": client.Origin()})

	return sdk.MapList(docsets, func(d Docset) protocol.ListItem {
		return protocol.ListItem{
			Title:       d.Name,
			Subtitle:    d.ReleaseOrLatest(),
			Accessories: []string{d.Slug},
			Actions: []protocol.Action{
				protocol.RunAction{
					Title:   fmt.Sprintf("Search %s entries", d.Name),
					Command: CommandSearchEntries,
					Params:  protocol.Values{ParamDocset: d.Slug},
				},
				protocol.OpenAction{
					Title: "Open in browser",
					URL:   client.DocsetURL(d.Slug),
					Exit:  ptr.To(true),
				},
			},
		}
	}), nil
}

func (e *Extension) handleSearchEntries(ctx context.Context, req *sdk.CommandRequest) (protocol.Response, error) {
	docset, err := req.Params.String(ParamDocset)
	if err != nil {
		return nil, err
	}

	client := NewClient(e.config, req.Fetcher)

	index, err := client.ListEntries(ctx, docset)
	if err != nil {
		return nil, err
	}

	_ = e.LogDebug(ctx, "fetched entries", map[string]any{"count": len(index.Entries), "docset": docset})

	return sdk.MapList(index.Entries, func(entry Entry) protocol.ListItem {
		url := client.EntryURL(docset, entry.Path)
		return protocol.ListItem{
			Title:    entry.Name,
			Subtitle: entry.Type,
			Actions: []protocol.Action{
				protocol.OpenAction{Title: "Open in Browser", URL: url},
				protocol.CopyAction{Title: "Copy URL", Key: "c", Text: url},
			},
		}
	}), nil
}

func (e *Extension) handleShowEntry(ctx context.Context, req *sdk.CommandRequest) (protocol.Response, error) {
	params, err := sdk.DecodeParams[struct {
		Docset string `json:"docset"`
		Path   string `json:"path"`
	}](req)
	if err != nil {
		return nil, err
	}

	client := NewClient(e.config, req.Fetcher)

	doc, err := client.GetDocument(ctx, params.Docset, params.Path)
	if err != nil {
		return nil, err
	}

	_ = e.LogDebug(ctx, "converted document", map[string]any{"docset": doc.Docset, "path": doc.Path, "bytes": len(doc.Markdown)})

	url := client.EntryURL(params.Docset, params.Path)
	return sdk.NewDetail(doc.Markdown,
		protocol.OpenAction{Title: "Open in Browser", URL: url},
		protocol.CopyAction{Title: "Copy URL", Key: "c", Text: url},
	), nil
}
