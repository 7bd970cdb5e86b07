// Package sdk provides a framework for building extkit extensions.
//
// An extension is a short-lived process. Invoked without arguments it prints
// its manifest as JSON; invoked with a single argument it decodes that
// argument as a request for one of its commands, runs the command and prints
// exactly one response document. Nothing is kept between invocations.
//
// # Creating an Extension
//
// Use [NewExtension] with a manifest, register a handler per command with
// [Extension.AddCommand], then call [Extension.Main]:
//
//	ext := sdk.NewExtension(protocol.Manifest{
//	    Title: "Greeter",
//	    Commands: []protocol.Command{{
//	        Name:   "greet",
//	        Title:  "Greet someone",
//	        Mode:   protocol.ModeDetail,
//	        Params: []protocol.Input{{Type: protocol.InputString, Name: "name", Title: "Name"}},
//	    }},
//	})
//
//	ext.AddCommand("greet", func(ctx context.Context, req *sdk.CommandRequest) (protocol.Response, error) {
//	    name, err := req.Params.String("name")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sdk.NewDetail(fmt.Sprintf("Hello, %s!", name)), nil
//	})
//
//	ext.Main()
//
// # Requests
//
// The request shape of each command is derived from the manifest by the
// payload package: params and preferences must carry exactly the declared
// keys with the declared types, and query is present only for search
// commands. Requests that do not match are rejected before any handler runs.
//
// # Responses
//
// Filter and search commands return a [protocol.List]; use [MapList] to map
// fetched records to items. A handler error makes the invocation exit
// non-zero without writing anything to stdout.
//
// # Outbound reads
//
// [CommandRequest.Fetcher] allows a single Get per invocation; decode JSON
// bodies with [fetch.GetJSON].
// Swap the underlying collaborator with [WithFetcher] in tests.
//
// # Logging
//
// Extensions log to stderr, never stdout:
//
//	ext.LogInfo(ctx, "Fetching docsets", map[string]any{"origin": origin})
//	ext.LogError(ctx, "Fetch failed", map[string]any{"error": err.Error()})
//
// Debug entries are printed only when EXTKIT_DEBUG is set or [WithDebug] is used.
package sdk
