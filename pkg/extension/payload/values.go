package payload

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/extkit/extkit/pkg/extension/protocol"
)

// ParseValues converts raw text values, as typed on a command line, into
// Values according to the declared inputs. Every declared input must be
// present and no undeclared key is accepted.
func ParseValues(inputs []protocol.Input, raw map[string]string) (protocol.Values, error) {
	var errs []error

	declared := make(map[string]struct{}, len(inputs))
	values := make(protocol.Values, len(inputs))

	for _, in := range inputs {
		declared[in.Name] = struct{}{}

		text, ok := raw[in.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("missing value for %q (%s)", in.Name, in.Type))
			continue
		}

		v, err := parseValue(in.Type, text)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %q: %w", in.Name, err))
			continue
		}
		values[in.Name] = v
	}

	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if _, ok := declared[name]; !ok {
			errs = append(errs, fmt.Errorf("unknown input %q", name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return values, nil
}

func parseValue(typ protocol.InputType, text string) (any, error) {
	switch typ {
	case protocol.InputString:
		return text, nil
	case protocol.InputNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		// JSON has no representation for these.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %q is not finite", text)
		}
		return f, nil
	case protocol.InputBoolean:
		return strconv.ParseBool(text)
	default:
		return nil, fmt.Errorf("unsupported input type %q", typ)
	}
}
