package signal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestInterceptor checks the shutdown request path and context
// cancellation. It also covers restarting once the handler exited.
func TestInterceptor(t *testing.T) {
	for i := 0; i < 2; i++ {
		interceptor, err := Intercept()
		require.NoError(t, err)

		_, err = Intercept()
		require.Error(t, err)

		ctx, cancel := interceptor.Context(context.Background())
		defer cancel()
		require.True(t, interceptor.Alive())

		interceptor.RequestShutdown()

		select {
		case <-interceptor.ShutdownChannel():
		case <-time.After(5 * time.Second):
			t.Fatal("shutdown channel not closed")
		}
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("context not cancelled")
		}
		require.False(t, interceptor.Alive())

		// The started flag is cleared right after the channel closes.
		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&started) == 0
		}, 5*time.Second, 10*time.Millisecond)

		// A second request after shutdown must not block.
		interceptor.RequestShutdown()
	}
}
