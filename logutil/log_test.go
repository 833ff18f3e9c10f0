package logutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClosuresAreLazy checks that closures only run when rendered.
func TestClosuresAreLazy(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewLogClosure(func() string {
		calls++
		return "rendered"
	})
	require.Zero(t, calls)
	require.Equal(t, "rendered", c.String())
	require.Equal(t, 1, calls)

	require.Equal(t, "00ff", HexLogClosure([]byte{0x00, 0xff}).String())
	require.Contains(t, SpewLogClosure([]int{7}).String(), "7")
}

// TestLogBlock checks the attribute key.
func TestLogBlock(t *testing.T) {
	t.Parallel()

	require.Equal(t, "p0", LogBlock("p0", []byte{1, 2, 3}).Key)
	require.Equal(t, "c0", LogBlock("c0", nil).Key)
}
