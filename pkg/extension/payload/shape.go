package payload

import (
	"fmt"

	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/google/jsonschema-go/jsonschema"
)

// Shape is the request shape derived for one command of a manifest.
type Shape struct {
	command  protocol.Command
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// Command returns the declaration the shape was derived from.
func (s *Shape) Command() protocol.Command {
	return s.command
}

// HasQuery reports whether requests for this command carry a query field.
func (s *Shape) HasQuery() bool {
	return s.command.Mode == protocol.ModeSearch
}

// Params returns the declared params of the command, possibly empty.
func (s *Shape) Params() []protocol.Input {
	return s.command.Params
}

// Schema returns the JSON Schema a request for this command must satisfy.
func (s *Shape) Schema() *jsonschema.Schema {
	return s.schema
}

// Validate checks an already unmarshalled JSON value against the shape.
func (s *Shape) Validate(instance any) error {
	return s.resolved.Validate(instance)
}

func deriveShape(preferences []protocol.Input, cmd protocol.Command) (*Shape, error) {
	root := closedObject()
	root.Title = cmd.Title

	addProperty(root, "command", &jsonschema.Schema{Type: "string", Enum: []any{cmd.Name}})
	addProperty(root, "cwd", &jsonschema.Schema{Type: "string"})
	addProperty(root, "preferences", inputsObject(preferences))
	addProperty(root, "params", inputsObject(cmd.Params))
	if cmd.Mode == protocol.ModeSearch {
		addProperty(root, "query", &jsonschema.Schema{Type: "string"})
	}

	resolved, err := root.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request schema for command %q: %w", cmd.Name, err)
	}

	return &Shape{
		command:  cmd,
		schema:   root,
		resolved: resolved,
	}, nil
}

// inputsObject builds an object schema whose keys are exactly the declared
// input names, each typed by its declared input type.
func inputsObject(inputs []protocol.Input) *jsonschema.Schema {
	obj := closedObject()
	for _, in := range inputs {
		addProperty(obj, in.Name, &jsonschema.Schema{Type: string(in.Type), Title: in.Title})
	}
	return obj
}

// closedObject returns an object schema that rejects undeclared keys.
// Every node is freshly allocated: jsonschema-go refuses schemas that are
// not trees.
func closedObject() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{},
		Required:             []string{},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func addProperty(obj *jsonschema.Schema, name string, prop *jsonschema.Schema) {
	obj.Properties[name] = prop
	obj.Required = append(obj.Required, name)
	obj.PropertyOrder = append(obj.PropertyOrder, name)
}
