package protocol

import (
	"encoding/json"
	"fmt"
)

// Response is a document an extension prints back to the host.
// It is implemented by *List and *Detail.
type Response interface {
	responseKind() string
}

// List is the rendering payload for filter and search commands.
type List struct {
	Items []ListItem `json:"items"`
}

func (*List) responseKind() string { return "list" }

// MarshalJSON always encodes items as an array.
func (l List) MarshalJSON() ([]byte, error) {
	type wire List
	if l.Items == nil {
		l.Items = []ListItem{}
	}
	return json.Marshal(wire(l))
}

// ListItem is one row of a List.
type ListItem struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
	Actions     []Action `json:"actions"`
}

func (i ListItem) MarshalJSON() ([]byte, error) {
	type wire ListItem
	if i.Actions == nil {
		i.Actions = []Action{}
	}
	return json.Marshal(wire(i))
}

func (i *ListItem) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Title       string            `json:"title"`
		Subtitle    string            `json:"subtitle,omitempty"`
		Accessories []string          `json:"accessories,omitempty"`
		Actions     []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	actions, err := decodeActions(tmp.Actions)
	if err != nil {
		return fmt.Errorf("item %q: %w", tmp.Title, err)
	}

	*i = ListItem{
		Title:       tmp.Title,
		Subtitle:    tmp.Subtitle,
		Accessories: tmp.Accessories,
		Actions:     actions,
	}
	return nil
}

// Detail is the rendering payload for detail commands.
type Detail struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions,omitempty"`
}

func (*Detail) responseKind() string { return "detail" }

func (d *Detail) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Text    string            `json:"text"`
		Actions []json.RawMessage `json:"actions,omitempty"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	actions, err := decodeActions(tmp.Actions)
	if err != nil {
		return err
	}

	*d = Detail{Text: tmp.Text, Actions: actions}
	return nil
}

// ActionType discriminates the Action variants on the wire.
type ActionType string

const (
	ActionRun  ActionType = "run"
	ActionOpen ActionType = "open"
	ActionCopy ActionType = "copy"
)

// Action is a follow-up the user can trigger on a response item.
// The variants are RunAction, OpenAction and CopyAction.
type Action interface {
	ActionType() ActionType
	ActionTitle() string
}

// RunAction re-invokes a command of the same extension with params.
type RunAction struct {
	Title   string
	Command string
	Params  Values
}

func (RunAction) ActionType() ActionType { return ActionRun }
func (a RunAction) ActionTitle() string  { return a.Title }

func (a RunAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title   string     `json:"title"`
		Type    ActionType `json:"type"`
		Command string     `json:"command"`
		Params  Values     `json:"params"`
	}{a.Title, ActionRun, a.Command, a.Params})
}

// OpenAction opens URL in the host environment. Exit asks the host to
// close once the URL is opened.
type OpenAction struct {
	Title string
	URL   string
	Exit  *bool
}

func (OpenAction) ActionType() ActionType { return ActionOpen }
func (a OpenAction) ActionTitle() string  { return a.Title }

func (a OpenAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title string     `json:"title"`
		Type  ActionType `json:"type"`
		URL   string     `json:"url"`
		Exit  *bool      `json:"exit,omitempty"`
	}{a.Title, ActionOpen, a.URL, a.Exit})
}

// CopyAction copies Text to the clipboard. Key is an optional keybinding hint.
type CopyAction struct {
	Title string
	Key   string
	Text  string
}

func (CopyAction) ActionType() ActionType { return ActionCopy }
func (a CopyAction) ActionTitle() string  { return a.Title }

func (a CopyAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title string     `json:"title"`
		Type  ActionType `json:"type"`
		Key   string     `json:"key,omitempty"`
		Text  string     `json:"text"`
	}{a.Title, ActionCopy, a.Key, a.Text})
}

// UnmarshalAction decodes a single action, dispatching on its type tag.
func UnmarshalAction(data []byte) (Action, error) {
	var head struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case ActionRun:
		var a struct {
			Title   string `json:"title"`
			Command string `json:"command"`
			Params  Values `json:"params"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return RunAction{Title: a.Title, Command: a.Command, Params: a.Params}, nil
	case ActionOpen:
		var a struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Exit  *bool  `json:"exit"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return OpenAction{Title: a.Title, URL: a.URL, Exit: a.Exit}, nil
	case ActionCopy:
		var a struct {
			Title string `json:"title"`
			Key   string `json:"key"`
			Text  string `json:"text"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return CopyAction{Title: a.Title, Key: a.Key, Text: a.Text}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", head.Type)
	}
}

func decodeActions(raw []json.RawMessage) ([]Action, error) {
	if raw == nil {
		return nil, nil
	}

	actions := make([]Action, 0, len(raw))
	for i, r := range raw {
		a, err := UnmarshalAction(r)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
