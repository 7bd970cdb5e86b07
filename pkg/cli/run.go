package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/extkit/extkit/pkg/extension/payload"
	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		params     []string
		query      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run <extension> <command>",
		Short: "Invoke a command of an extension",
		Long: `Build a request for a command from --param flags and the registry preferences,
check it against the shape derived from the extension manifest, invoke the
extension with it and render the response.

Examples:
  extkit run devdocs search-docsets
  extkit run devdocs search-entries --param docset=css
  extkit run ./bin/notes find --query todo --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, command := args[0], args[1]

			raw, err := parseParamFlags(params)
			if err != nil {
				return err
			}

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			manager, err := newManager(cmd, settings, alias)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			c, err := manager.Get(ctx, alias)
			if err != nil {
				return err
			}

			m, err := c.Describe(ctx)
			if err != nil {
				return fmt.Errorf("failed to describe %s: %w", alias, err)
			}

			codec, err := payload.NewCodec(m)
			if err != nil {
				return err
			}

			shape, ok := codec.Shape(command)
			if !ok {
				return &protocol.UnknownCommandError{Command: command}
			}

			values, err := payload.ParseValues(shape.Params(), raw)
			if err != nil {
				return fmt.Errorf("invalid params for command %q: %w", command, err)
			}

			var q *string
			switch {
			case shape.HasQuery():
				q = ptr.To(query)
			case cmd.Flags().Changed("query"):
				return fmt.Errorf("command %q is not a search command and takes no query", command)
			}

			req, err := manager.Request(alias, command, values, q)
			if err != nil {
				return err
			}

			if err := codec.Validate(req); err != nil {
				return err
			}

			out, err := c.Execute(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to run %s %s: %w", alias, command, err)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}

			return renderResponse(cmd.OutOrStdout(), shape.Command().Mode, out)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Command param as name=value (repeatable)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Query for search commands")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw response document")

	return cmd
}

func parseParamFlags(flags []string) (map[string]string, error) {
	raw := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected name=value", f)
		}
		if _, dup := raw[name]; dup {
			return nil, fmt.Errorf("param %q given more than once", name)
		}
		raw[name] = value
	}
	return raw, nil
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	if raw == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(w)
	return err
}

func renderResponse(w io.Writer, mode protocol.Mode, raw json.RawMessage) error {
	green := color.New(color.FgGreen)

	switch mode {
	case protocol.ModeFilter, protocol.ModeSearch:
		var list protocol.List
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("failed to decode list: %w", err)
		}
		printList(w, &list)
	case protocol.ModeDetail:
		var detail protocol.Detail
		if err := json.Unmarshal(raw, &detail); err != nil {
			return fmt.Errorf("failed to decode detail: %w", err)
		}
		fmt.Fprintln(w, detail.Text)
		printActions(w, detail.Actions)
	default:
		if raw != nil {
			return printJSON(w, raw)
		}
		green.Fprintln(w, "✓ done")
	}

	return nil
}

func printList(w io.Writer, list *protocol.List) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	if len(list.Items) == 0 {
		faint.Fprintln(w, "(no items)")
		return
	}

	for _, item := range list.Items {
		bold.Fprint(w, item.Title)
		if item.Subtitle != "" {
			faint.Fprintf(w, "  %s", item.Subtitle)
		}
		for _, a := range item.Accessories {
			cyan.Fprintf(w, "  [%s]", a)
		}
		fmt.Fprintln(w)
		printActions(w, item.Actions)
	}
}

func printActions(w io.Writer, actions []protocol.Action) {
	faint := color.New(color.Faint)

	for _, a := range actions {
		fmt.Fprintf(w, "    %s %s", actionSymbol(a), a.ActionTitle())
		switch a := a.(type) {
		case protocol.RunAction:
			faint.Fprintf(w, "  %s %s", a.Command, formatValues(a.Params))
		case protocol.OpenAction:
			faint.Fprintf(w, "  %s", a.URL)
		case protocol.CopyAction:
			if a.Key != "" {
				faint.Fprintf(w, "  (%s)", a.Key)
			}
		}
		fmt.Fprintln(w)
	}
}

func actionSymbol(a protocol.Action) string {
	switch a.ActionType() {
	case protocol.ActionRun:
		return "→"
	case protocol.ActionOpen:
		return "↗"
	case protocol.ActionCopy:
		return "⧉"
	default:
		return "•"
	}
}

func formatValues(v protocol.Values) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(map[string]any(v))
	}
	return string(data)
}
