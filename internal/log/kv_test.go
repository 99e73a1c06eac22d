package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKvToArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    []KV
		expected []any
	}{
		{
			name:     "no args",
			input:    nil,
			expected: []any{},
		},
		{
			name:     "one pair",
			input:    []KV{{"code": "SQLITE_BUSY"}},
			expected: []any{"code", "SQLITE_BUSY"},
		},
		{
			name:     "sorted by key",
			input:    []KV{{"sql": "SELECT 1", "changes": 0}},
			expected: []any{"changes", 0, "sql", "SELECT 1"},
		},
		{
			name:     "only first kv is used",
			input:    []KV{{"a": 1}, {"b": 2}},
			expected: []any{"a", 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kvToArgs(tt.input...))
		})
	}
}

func TestKvToArgsNs(t *testing.T) {
	t.Run("NoArgs", func(t *testing.T) {
		assert.Equal(t, []any{"ns", NsShell}, kvToArgsNs(NsShell))
	})

	t.Run("NamespaceFirst", func(t *testing.T) {
		kv := KV{"z": "last", "a": "first"}
		result := kvToArgsNs(NsEngine, kv)
		assert.Equal(t, []any{"ns", NsEngine, "a", "first", "z", "last"}, result)
	})

	t.Run("PickOnlyFirst", func(t *testing.T) {
		result := kvToArgsNs(NsPeople, KV{"key1": "value1"}, KV{"key2": "value2"})
		assert.Equal(t, []any{"ns", NsPeople, "key1", "value1"}, result)
	})
}
