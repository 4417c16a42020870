package stealth

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// RetryPolicy retries an operation while Retryable says so, sleeping an
// exponentially growing, jittered interval between attempts.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Retryable       func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Retryable:       errs.IsNetwork,
	}
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.RandomizationFactor = 0.5
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// Do runs op at most MaxAttempts times, sequentially.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = errs.IsNetwork
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		metrics.UpstreamRetriesCounter.Inc()
		log.Warnf("attempt %d failed: %v, retrying in %v", attempt, err, wait)
	}

	return backoff.RetryNotify(operation, p.newBackOff(ctx), notify)
}
