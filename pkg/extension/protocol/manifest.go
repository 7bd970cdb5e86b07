package protocol

import (
	"errors"
	"fmt"

	"sigs.k8s.io/yaml"
)

// ParseManifest decodes a manifest written in YAML or JSON and validates it.
// Unknown fields are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.UnmarshalStrict(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks the manifest invariants: a title, at least one command,
// unique command names, known modes, and well-formed input lists with
// unique names. All problems are reported, joined.
func (m *Manifest) Validate() error {
	var errs []error

	if m.Title == "" {
		errs = append(errs, &ValidationError{Path: "/title", Message: "title is required"})
	}

	errs = append(errs, validateInputs("/preferences", m.Preferences)...)

	if len(m.Commands) == 0 {
		errs = append(errs, &ValidationError{Path: "/commands", Message: "at least one command is required"})
	}

	seen := make(map[string]int, len(m.Commands))
	for i, cmd := range m.Commands {
		path := fmt.Sprintf("/commands/%d", i)

		switch prev, dup := seen[cmd.Name]; {
		case cmd.Name == "":
			errs = append(errs, &ValidationError{Path: path + "/name", Message: "name is required"})
		case dup:
			errs = append(errs, &ValidationError{
				Path:    path + "/name",
				Message: fmt.Sprintf("command %q is already declared at /commands/%d", cmd.Name, prev),
			})
		default:
			seen[cmd.Name] = i
		}

		if cmd.Title == "" {
			errs = append(errs, &ValidationError{Path: path + "/title", Message: "title is required"})
		}

		if !cmd.Mode.Valid() {
			errs = append(errs, &ValidationError{
				Path:    path + "/mode",
				Message: fmt.Sprintf("unknown mode %q: expected one of %v", cmd.Mode, Modes),
			})
		}

		errs = append(errs, validateInputs(path+"/params", cmd.Params)...)
	}

	return errors.Join(errs...)
}

func validateInputs(path string, inputs []Input) []error {
	var errs []error

	seen := make(map[string]int, len(inputs))
	for i, in := range inputs {
		p := fmt.Sprintf("%s/%d", path, i)

		switch prev, dup := seen[in.Name]; {
		case in.Name == "":
			errs = append(errs, &ValidationError{Path: p + "/name", Message: "name is required"})
		case dup:
			errs = append(errs, &ValidationError{
				Path:    p + "/name",
				Message: fmt.Sprintf("input %q is already declared at %s/%d", in.Name, path, prev),
			})
		default:
			seen[in.Name] = i
		}

		if in.Title == "" {
			errs = append(errs, &ValidationError{Path: p + "/title", Message: "title is required"})
		}

		if !in.Type.Valid() {
			errs = append(errs, &ValidationError{
				Path:    p + "/type",
				Message: fmt.Sprintf("unknown type %q: expected one of %v", in.Type, InputTypes),
			})
		}
	}

	return errs
}
