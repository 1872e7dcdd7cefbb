package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RetryPolicy controls how store calls are retried on transient failures.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
	// Transient decides whether an error is worth another attempt.
	Transient func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxRetries:      3,
		Transient:       IsTransient,
	}
}

// IsTransient reports driver-level network and timeout errors.
func IsTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func (p RetryPolicy) do(ctx context.Context, op func(ctx context.Context) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx)

	transient := p.Transient
	if transient == nil {
		transient = IsTransient
	}
	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// insert runs an insert under the retry policy. A retried insert can hit a
// duplicate key written by its own earlier attempt, whose reply was lost;
// committed tells that case apart from a real conflict.
func (p RetryPolicy) insert(ctx context.Context, insert func(ctx context.Context) error, committed func(ctx context.Context) (bool, error)) error {
	attempts := 0
	return p.do(ctx, func(ctx context.Context) error {
		attempts++
		err := insert(ctx)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			return err
		}
		if attempts > 1 {
			ours, cerr := committed(ctx)
			if cerr != nil {
				return cerr
			}
			if ours {
				return nil
			}
		}
		return ErrDuplicate
	})
}
