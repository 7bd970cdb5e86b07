package protocol

import (
	"encoding/json"
	"fmt"
)

// Mode tells the host how to render the response of a command.
type Mode string

const (
	ModeFilter Mode = "filter"
	ModeSearch Mode = "search"
	ModeDetail Mode = "detail"
	ModeTTY    Mode = "tty"
	ModeSilent Mode = "silent"
)

// Modes lists every mode a command may declare.
var Modes = []Mode{ModeFilter, ModeSearch, ModeDetail, ModeTTY, ModeSilent}

func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// InputType is the declared type of a param or preference.
type InputType string

const (
	InputString  InputType = "string"
	InputNumber  InputType = "number"
	InputBoolean InputType = "boolean"
)

// InputTypes lists every supported input type.
var InputTypes = []InputType{InputString, InputNumber, InputBoolean}

func (t InputType) Valid() bool {
	for _, known := range InputTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Manifest declares an extension's identity and capabilities.
// It is printed when the extension is invoked without arguments.
type Manifest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Preferences []Input   `json:"preferences,omitempty"`
	Commands    []Command `json:"commands"`
}

// Command returns the command declared under name.
func (m *Manifest) Command(name string) (*Command, bool) {
	for i := range m.Commands {
		if m.Commands[i].Name == name {
			return &m.Commands[i], true
		}
	}
	return nil, false
}

// Command is one callable operation of an extension.
type Command struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Hidden      bool    `json:"hidden,omitempty"`
	Description string  `json:"description,omitempty"`
	Params      []Input `json:"params,omitempty"`
	Mode        Mode    `json:"mode"`
}

// Input is a typed, named value used for both command params and
// extension preferences. Every declared input is mandatory in a request.
type Input struct {
	Type  InputType `json:"type"`
	Name  string    `json:"name"`
	Title string    `json:"title"`
}

// Request is the decoded payload an extension receives for one invocation.
// Query is non-nil only for commands declared with ModeSearch.
type Request struct {
	Command     string  `json:"command"`
	Cwd         string  `json:"cwd"`
	Preferences Values  `json:"preferences"`
	Params      Values  `json:"params"`
	Query       *string `json:"query,omitempty"`
}

// HasQuery reports whether the request carries a query field.
func (r *Request) HasQuery() bool {
	return r.Query != nil
}

// Values maps input names to their decoded values: string, float64 or bool.
type Values map[string]any

// MarshalJSON encodes a nil Values as an empty object, never null.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(v))
}

// String returns the text value stored under name.
func (v Values) String(name string) (string, error) {
	return lookup[string](v, name, InputString)
}

// Number returns the numeric value stored under name.
func (v Values) Number(name string) (float64, error) {
	return lookup[float64](v, name, InputNumber)
}

// Bool returns the flag value stored under name.
func (v Values) Bool(name string) (bool, error) {
	return lookup[bool](v, name, InputBoolean)
}

func lookup[T any](v Values, name string, typ InputType) (T, error) {
	var zero T
	raw, ok := v[name]
	if !ok {
		return zero, fmt.Errorf("value %q is not set", name)
	}
	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("value %q is a %T, expected %s", name, raw, typ)
	}
	return val, nil
}
