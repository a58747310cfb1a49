package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/Tato-23/TareaTiendaOnline/internal/config"
)

// Do runs fn up to policy.Attempts times with exponential backoff between
// tries, multiplying the delay by a random jitter factor so concurrent
// consumers do not hammer the store in lockstep. The last error is returned
// when all attempts fail; ctx cancellation aborts the wait.
func Do(ctx context.Context, policy config.Retry, fn func() error) error {
	delay := policy.Base
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		wait := delay
		if policy.JitterFactor > 0 {
			wait = time.Duration(float64(wait) * (1 + policy.JitterFactor*(2*r.Float64()-1)))
		}
		if policy.Max > 0 && wait > policy.Max {
			wait = policy.Max
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if policy.Max > 0 && delay > policy.Max {
			delay = policy.Max
		}
	}
	return err
}
