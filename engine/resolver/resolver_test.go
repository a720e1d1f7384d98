package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveString(t *testing.T) {
	t.Run("Should substitute a known placeholder", func(t *testing.T) {
		r := New(map[string]string{"TARGET": "main"})
		out, err := r.ResolveString("index={TARGET} | head 10", nil)
		require.NoError(t, err)
		assert.Equal(t, "index=main | head 10", out)
	})

	t.Run("Should leave unknown placeholders untouched", func(t *testing.T) {
		r := New(map[string]string{"TARGET": "main"})
		out, err := r.ResolveString("index={TARGET} host={HOST}", nil)
		require.NoError(t, err)
		assert.Equal(t, "index=main host={HOST}", out)
	})

	t.Run("Should let task overrides win over workflow context", func(t *testing.T) {
		r := New(map[string]string{"TARGET": "main"})
		out, err := r.ResolveString("index={TARGET}", map[string]string{"TARGET": "override"})
		require.NoError(t, err)
		assert.Equal(t, "index=override", out)
	})

	t.Run("Should be idempotent across repeated application", func(t *testing.T) {
		r := New(map[string]string{"TARGET": "main"})
		once, err := r.ResolveString("index={TARGET}", nil)
		require.NoError(t, err)
		twice, err := r.ResolveString(once, nil)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})
}

func TestResolveParameters(t *testing.T) {
	t.Run("Should substitute only string values, passing others through", func(t *testing.T) {
		r := New(map[string]string{"TARGET": "main"})
		params := map[string]any{
			"query": "index={TARGET}",
			"count": 10,
		}
		out, err := r.ResolveParameters(params, nil)
		require.NoError(t, err)
		assert.Equal(t, "index=main", out["query"])
		assert.Equal(t, 10, out["count"])
	})

	t.Run("Should return nil for nil input", func(t *testing.T) {
		r := New(nil)
		out, err := r.ResolveParameters(nil, nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	})
}

func TestDiscoverySets(t *testing.T) {
	t.Run("Should deduplicate and stay append-only", func(t *testing.T) {
		r := New(nil)
		r.AddDiscovered(AxisCategory, "web")
		r.AddDiscovered(AxisCategory, "web")
		r.AddDiscovered(AxisCategory, "security")
		assert.Equal(t, []string{"web", "security"}, r.Discovered(AxisCategory))
	})

	t.Run("Should ignore empty values", func(t *testing.T) {
		r := New(nil)
		r.AddDiscovered(AxisSource, "")
		assert.Empty(t, r.Discovered(AxisSource))
	})

	t.Run("Should keep axes independent", func(t *testing.T) {
		r := New(nil)
		r.AddDiscovered(AxisCategory, "web")
		r.AddDiscovered(AxisSource, "idx_main")
		assert.Equal(t, []string{"web"}, r.Discovered(AxisCategory))
		assert.Equal(t, []string{"idx_main"}, r.Discovered(AxisSource))
	})
}
