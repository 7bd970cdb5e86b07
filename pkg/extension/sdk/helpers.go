package sdk

import (
	"encoding/json"
	"fmt"

	"github.com/extkit/extkit/pkg/extension/protocol"
)

// DecodeParams converts the request params into the provided type.
// Values arrive as map[string]any and are re-marshalled into T.
func DecodeParams[T any](req *CommandRequest) (T, error) {
	return decodeValues[T]("params", req.Params)
}

// DecodePreferences converts the request preferences into the provided type.
func DecodePreferences[T any](req *CommandRequest) (T, error) {
	return decodeValues[T]("preferences", req.Preferences)
}

func decodeValues[T any](what string, values protocol.Values) (T, error) {
	var result T

	if values == nil {
		return result, nil
	}

	data, err := json.Marshal(values)
	if err != nil {
		return result, fmt.Errorf("failed to marshal %s: %w", what, err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal %s: %w", what, err)
	}

	return result, nil
}

// MapList builds a list with one item per record.
func MapList[T any](records []T, item func(T) protocol.ListItem) *protocol.List {
	items := make([]protocol.ListItem, 0, len(records))
	for _, r := range records {
		items = append(items, item(r))
	}
	return &protocol.List{Items: items}
}

// NewDetail creates a detail response.
func NewDetail(text string, actions ...protocol.Action) *protocol.Detail {
	return &protocol.Detail{Text: text, Actions: actions}
}
