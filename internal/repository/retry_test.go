package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

var errFlaky = errors.New("flaky")

func testPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxRetries:      3,
		Transient:       func(err error) bool { return errors.Is(err, errFlaky) },
	}
}

func TestRetryPolicy(t *testing.T) {
	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		err := testPolicy().do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := testPolicy().do(context.Background(), func(context.Context) error {
			calls++
			return errFlaky
		})
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 4, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		err := testPolicy().do(context.Background(), func(context.Context) error {
			calls++
			return ErrDuplicate
		})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := testPolicy().do(ctx, func(context.Context) error {
			calls++
			cancel()
			return errFlaky
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("default classifies plain errors as permanent", func(t *testing.T) {
		assert.False(t, IsTransient(errors.New("boom")))
	})
}

func duplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func TestRetryPolicy_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("own write from a lost reply counts as success", func(t *testing.T) {
		calls := 0
		insert := func(context.Context) error {
			calls++
			if calls == 1 {
				return errFlaky
			}
			return duplicateKey()
		}
		committed := func(context.Context) (bool, error) { return true, nil }

		assert.NoError(t, testPolicy().insert(ctx, insert, committed))
		assert.Equal(t, 2, calls)
	})

	t.Run("someone else's document after a retry is a duplicate", func(t *testing.T) {
		calls := 0
		insert := func(context.Context) error {
			calls++
			if calls == 1 {
				return errFlaky
			}
			return duplicateKey()
		}
		committed := func(context.Context) (bool, error) { return false, nil }

		assert.ErrorIs(t, testPolicy().insert(ctx, insert, committed), ErrDuplicate)
	})

	t.Run("first attempt duplicate is never checked", func(t *testing.T) {
		checked := false
		insert := func(context.Context) error { return duplicateKey() }
		committed := func(context.Context) (bool, error) { checked = true; return true, nil }

		assert.ErrorIs(t, testPolicy().insert(ctx, insert, committed), ErrDuplicate)
		assert.False(t, checked)
	})
}
