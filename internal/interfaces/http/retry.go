package http

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/farmstock-api/internal/domain"
)

// transientRetry reintenta operaciones que fallaron con domain.ErrTransientStore. Solo esos
// errores: la transacción ya se revirtió y repetirla no duplica asientos.
type transientRetry struct {
	attempts int
	backoff  time.Duration
}

func newTransientRetry(attempts int) transientRetry {
	if attempts < 0 {
		attempts = 0
	}
	return transientRetry{attempts: attempts, backoff: 50 * time.Millisecond}
}

func (r transientRetry) do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	for i := 1; i <= r.attempts && errors.Is(err, domain.ErrTransientStore); i++ {
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(i) * r.backoff):
		}
		err = fn(ctx)
	}
	return err
}
