package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	var b Buffer
	require.NoError(t, b.WriteText(context.Background(), "one"))
	require.NoError(t, b.WriteText(context.Background(), "two"))

	assert.Equal(t, "two", b.Text())
	assert.Equal(t, 2, b.Writes())
}

func TestSystem_Unavailable(t *testing.T) {
	called := false
	s := &System{
		unsupported: func() bool { return true },
		write:       func(string) error { called = true; return nil },
	}

	assert.False(t, s.Available())
	assert.ErrorIs(t, s.WriteText(context.Background(), "x"), ErrUnavailable)
	assert.False(t, called)
}

func TestSystem_WritesText(t *testing.T) {
	var got string
	s := &System{
		unsupported: func() bool { return false },
		write:       func(text string) error { got = text; return nil },
	}

	require.NoError(t, s.WriteText(context.Background(), `{"guests": 50}`))
	assert.Equal(t, `{"guests": 50}`, got)
}

func TestSystem_WriteError(t *testing.T) {
	boom := errors.New("xclip: exit status 1")
	s := &System{
		unsupported: func() bool { return false },
		write:       func(string) error { return boom },
	}

	err := s.WriteText(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "write clipboard")
}

func TestSystem_CanceledContext(t *testing.T) {
	s := &System{
		unsupported: func() bool { return false },
		write:       func(string) error { t.Fatal("write after cancel"); return nil },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.WriteText(ctx, "x"), context.Canceled)
}

func TestNewSystem_UsesPackageBackend(t *testing.T) {
	s := NewSystem()
	require.NotNil(t, s.write)
	// Hosts without a clipboard tool report unavailable instead of failing.
	if !s.Available() {
		assert.ErrorIs(t, s.WriteText(context.Background(), "x"), ErrUnavailable)
	}
}
