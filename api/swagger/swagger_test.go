package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocumentsSupersededChecks(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]struct {
			Responses map[string]json.RawMessage `json:"responses"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	for _, path := range []string{"/api/v1/events/check-name", "/api/v1/events/check-conflicts"} {
		op, ok := doc.Paths[path]["post"]
		require.True(t, ok, path)
		assert.Contains(t, op.Responses, "200", path)
		assert.Contains(t, op.Responses, "409", path)
	}
}
