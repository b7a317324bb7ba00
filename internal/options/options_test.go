package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errNegative = errors.New("value cannot be negative")

type testConfig struct {
	Level int
	Name  string
	Calls []string
}

func withLevel(v int) Option[*testConfig] {
	return New("WithLevel", func(c *testConfig) error {
		if v < 0 {
			return errNegative
		}
		c.Level = v
		c.Calls = append(c.Calls, "level")

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError("WithName", func(c *testConfig) {
		c.Name = name
		c.Calls = append(c.Calls, "name")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("a"), withLevel(3), withName("b"))
		require.NoError(t, err)
		require.Equal(t, 3, cfg.Level)
		require.Equal(t, "b", cfg.Name)
		require.Equal(t, []string{"name", "level", "name"}, cfg.Calls)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &testConfig{Level: 9}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 9, cfg.Level)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withLevel(1)))
		require.Equal(t, 1, cfg.Level)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("x"), withLevel(-1), withName("y"))
		require.ErrorIs(t, err, errNegative)
		require.Contains(t, err.Error(), "WithLevel")
		require.Equal(t, "x", cfg.Name)
		require.Equal(t, []string{"name"}, cfg.Calls)
	})
}

func TestFunc_Name(t *testing.T) {
	opt := New("WithSomething", func(*testConfig) error { return nil })
	require.Equal(t, "WithSomething", opt.Name())
}
