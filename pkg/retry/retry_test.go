package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("returns immediately on success", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(context.Context) error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(ctx, 3, time.Millisecond, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("still down")
		err := Do(ctx, 3, time.Millisecond, func(context.Context) error {
			calls++
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when context is cancelled between attempts", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		calls := 0
		err := Do(cancelCtx, 5, 50*time.Millisecond, func(context.Context) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
