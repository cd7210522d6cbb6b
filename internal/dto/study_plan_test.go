package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportanceUnmarshal(t *testing.T) {
	var subject SubjectRequest

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Math","importance":" High "}`), &subject))
	assert.Equal(t, Importance("High"), subject.Importance)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Math","importance":4}`), &subject))
	assert.Equal(t, Importance("4"), subject.Importance)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Math","importance":null}`), &subject))
	assert.Equal(t, Importance(""), subject.Importance)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"Math","importance":[1]}`), &subject))
}

func TestImportanceLevel(t *testing.T) {
	tests := []struct {
		raw   Importance
		want  Importance
		valid bool
	}{
		{"high", ImportanceHigh, true},
		{"MEDIUM", ImportanceMedium, true},
		{"Low", ImportanceLow, true},
		{"5", ImportanceHigh, true},
		{"4", ImportanceHigh, true},
		{"3", ImportanceMedium, true},
		{"2", ImportanceLow, true},
		{"1", ImportanceLow, true},
		{"0", "", false},
		{"6", "", false},
		{"2.5", "", false},
		{"urgent", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := tc.raw.Level()
		assert.Equal(t, tc.valid, ok, string(tc.raw))
		assert.Equal(t, tc.want, got, string(tc.raw))
	}
}
