package payload

import (
	"testing"

	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	inputs := []protocol.Input{
		{Type: protocol.InputString, Name: "id", Title: "ID"},
		{Type: protocol.InputNumber, Name: "line", Title: "Line"},
		{Type: protocol.InputBoolean, Name: "raw", Title: "Raw"},
	}

	tt := map[string]struct {
		raw       map[string]string
		expected  protocol.Values
		expectErr []string
	}{
		"all values": {
			raw:      map[string]string{"id": "a=b", "line": "-2.5", "raw": "true"},
			expected: protocol.Values{"id": "a=b", "line": -2.5, "raw": true},
		},
		"empty string is a value": {
			raw:      map[string]string{"id": "", "line": "0", "raw": "false"},
			expected: protocol.Values{"id": "", "line": 0.0, "raw": false},
		},
		"missing and unknown keys are all reported": {
			raw: map[string]string{"id": "x", "zeta": "1", "alpha": "2"},
			expectErr: []string{
				`missing value for "line" (number)`,
				`missing value for "raw" (boolean)`,
				`unknown input "alpha"`,
				`unknown input "zeta"`,
			},
		},
		"wrong types": {
			raw: map[string]string{"id": "x", "line": "ten", "raw": "maybe"},
			expectErr: []string{
				`invalid value for "line"`,
				`invalid value for "raw"`,
			},
		},
		"not a number": {
			raw:       map[string]string{"id": "x", "line": "NaN", "raw": "true"},
			expectErr: []string{`invalid value for "line": number "NaN" is not finite`},
		},
		"infinite number": {
			raw:       map[string]string{"id": "x", "line": "-Inf", "raw": "true"},
			expectErr: []string{`invalid value for "line": number "-Inf" is not finite`},
		},
		"overflowing number": {
			raw:       map[string]string{"id": "x", "line": "1e400", "raw": "true"},
			expectErr: []string{`invalid value for "line"`},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			values, err := ParseValues(inputs, tc.raw)
			if len(tc.expectErr) > 0 {
				require.Error(t, err)
				for _, msg := range tc.expectErr {
					assert.Contains(t, err.Error(), msg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, values)
		})
	}
}

func TestParseValues_NoInputs(t *testing.T) {
	values, err := ParseValues(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, protocol.Values{}, values)
}
