package breaker_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/klarkent2022/smart-irrigation/internal/breaker"
	"github.com/klarkent2022/smart-irrigation/internal/config"
)

func TestBreaker(t *testing.T) {
	cb := breaker.New("s3", config.BreakerConf{MaxFailures: 2, TimeoutSeconds: 60}, zap.NewNop())
	boom := errors.New("boom")
	fail := func() (interface{}, error) { return nil, boom }

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(fail)
		assert.ErrorIs(t, err, boom)
		assert.False(t, breaker.Open(err))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	called := false
	_, err := cb.Execute(func() (interface{}, error) { called = true; return nil, nil })
	assert.True(t, breaker.Open(err))
	assert.False(t, called)
}
