package sdk

import (
	"context"

	"github.com/extkit/extkit/pkg/extension/fetch"
	"github.com/extkit/extkit/pkg/extension/protocol"
)

// CommandRequest contains the decoded request and what a handler may use
// to answer it.
type CommandRequest struct {
	// Request holds exactly the declared params and preferences; Query is set
	// only for search commands.
	*protocol.Request

	// Declaration is the manifest entry of the invoked command.
	Declaration protocol.Command

	// Fetcher performs the invocation's single outbound read. A second
	// Get call fails with fetch.ErrReadLimit.
	Fetcher fetch.Fetcher
}

// CommandHandler is a function that handles one command invocation.
// Filter and search commands return a *protocol.List, detail commands a
// *protocol.Detail; tty and silent commands may return nil.
type CommandHandler func(ctx context.Context, req *CommandRequest) (protocol.Response, error)
