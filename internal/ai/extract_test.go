package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			raw:  `{"a": 1}`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "plain fence",
			raw:  "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "object embedded in prose",
			raw:  "Here is the analysis you asked for: {\"a\": 1} hope it helps!",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "nested object",
			raw:  `{"a": {"b": 2}}`,
			want: `{"a": {"b": 2}}`,
			ok:   true,
		},
		{
			name: "no object",
			raw:  "I could not produce a result.",
			ok:   false,
		},
		{
			name: "empty",
			raw:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}
