package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLegacy(t *testing.T) {
	t.Run("Should return the strictly validated template when valid", func(t *testing.T) {
		tmpl, err := LoadLegacy(context.Background(), []byte(validDocument()), "h.json", FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "core.health_check", tmpl.ID)
	})

	t.Run("Should fall back to structural decoding when validation fails", func(t *testing.T) {
		doc := `{"workflow_id": "core.x", "source": "core", "workflow_name": "X"}`
		tmpl, err := LoadLegacy(context.Background(), []byte(doc), "bad.json", FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "core.x", tmpl.ID)
		assert.Equal(t, "X", tmpl.Name)
	})
}
