package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("Should format message with code", func(t *testing.T) {
		err := NewError(errors.New("boom"), "AGENT_UNAVAILABLE", map[string]any{"agent": "search_guru"})
		assert.Equal(t, "AGENT_UNAVAILABLE: boom", err.Error())
	})

	t.Run("Should fall back to unknown error when cause is nil", func(t *testing.T) {
		err := NewError(nil, "", nil)
		assert.Equal(t, "unknown error", err.Error())
	})

	t.Run("Should unwrap to the original cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewError(cause, "CODE", nil)
		require.ErrorIs(t, err, cause)
	})

	t.Run("Should project to a map for nil-safe logging", func(t *testing.T) {
		var err *Error
		assert.Nil(t, err.AsMap())
		assert.Equal(t, "", err.Error())
	})

	t.Run("Should include details in AsMap", func(t *testing.T) {
		err := NewError(errors.New("x"), "CODE", map[string]any{"k": "v"})
		m := err.AsMap()
		assert.Equal(t, "CODE", m["code"])
		assert.Equal(t, map[string]any{"k": "v"}, m["details"])
	})
}
