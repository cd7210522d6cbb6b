package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocRendersValidJSON(t *testing.T) {
	SetBasePath("/v2/api")
	t.Cleanup(func() { SetBasePath("/api") })

	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Info     map[string]string          `json:"info"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/v2/api", doc.BasePath)
	assert.Equal(t, "Study Planner API", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/study-plan")
	assert.Contains(t, doc.Paths, "/study-plan/batch")
	assert.Contains(t, doc.Paths, "/study-plan/export")
	assert.Contains(t, doc.Paths, "/study-plan/cache")
}
