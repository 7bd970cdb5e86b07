// Package payload derives, from a manifest, the exact request shape each
// command accepts and decodes raw request arguments against it.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/extkit/extkit/pkg/extension/protocol"
)

// Codec holds the request shapes derived from one manifest.
type Codec struct {
	manifest *protocol.Manifest
	shapes   map[string]*Shape
}

// NewCodec validates m and derives a shape for every declared command.
func NewCodec(m *protocol.Manifest) (*Codec, error) {
	if m == nil {
		return nil, errors.New("manifest is required")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	c := &Codec{
		manifest: m,
		shapes:   make(map[string]*Shape, len(m.Commands)),
	}

	for _, cmd := range m.Commands {
		shape, err := deriveShape(m.Preferences, cmd)
		if err != nil {
			return nil, err
		}
		c.shapes[cmd.Name] = shape
	}

	return c, nil
}

// Manifest returns the manifest the codec was built from.
func (c *Codec) Manifest() *protocol.Manifest {
	return c.manifest
}

// Shape returns the shape derived for the named command.
func (c *Codec) Shape(name string) (*Shape, bool) {
	s, ok := c.shapes[name]
	return s, ok
}

// Shapes returns every derived shape in manifest order.
func (c *Codec) Shapes() []*Shape {
	out := make([]*Shape, 0, len(c.manifest.Commands))
	for _, cmd := range c.manifest.Commands {
		out = append(out, c.shapes[cmd.Name])
	}
	return out
}

// Decode parses a raw request argument. The command tag selects the shape;
// an undeclared command yields *protocol.UnknownCommandError and any other
// mismatch yields *protocol.DecodeError. No partial request is returned.
func (c *Codec) Decode(data []byte) (*protocol.Request, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, &protocol.DecodeError{Err: err}
	}

	obj, ok := instance.(map[string]any)
	if !ok {
		return nil, &protocol.DecodeError{Err: fmt.Errorf("request must be a JSON object, got %s", jsonKind(instance))}
	}

	name, ok := obj["command"].(string)
	if !ok {
		return nil, &protocol.DecodeError{Err: errors.New(`"command" must be a string`)}
	}

	shape, ok := c.shapes[name]
	if !ok {
		return nil, &protocol.UnknownCommandError{Command: name}
	}

	if err := shape.Validate(instance); err != nil {
		return nil, &protocol.DecodeError{Command: name, Err: err}
	}

	req := &protocol.Request{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, &protocol.DecodeError{Command: name, Err: err}
	}

	if req.Preferences == nil {
		req.Preferences = protocol.Values{}
	}
	if req.Params == nil {
		req.Params = protocol.Values{}
	}

	return req, nil
}

// Validate checks that req has exactly the shape derived for its command.
func (c *Codec) Validate(req *protocol.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	_, err = c.Decode(data)
	return err
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
