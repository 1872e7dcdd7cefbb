package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakeClient struct {
	pingErr      error
	disconnected bool
}

func (c *fakeClient) Ping(context.Context, *readpref.ReadPref) error { return c.pingErr }

func (c *fakeClient) Disconnect(context.Context) error {
	c.disconnected = true
	return nil
}

func TestPingOrDisconnect(t *testing.T) {
	log := zap.NewNop().Sugar()

	t.Run("failed ping disconnects", func(t *testing.T) {
		refused := errors.New("connection refused")
		c := &fakeClient{pingErr: refused}
		err := pingOrDisconnect(context.Background(), c, log)
		assert.ErrorIs(t, err, refused)
		assert.True(t, c.disconnected)
	})

	t.Run("healthy client stays connected", func(t *testing.T) {
		c := &fakeClient{}
		assert.NoError(t, pingOrDisconnect(context.Background(), c, log))
		assert.False(t, c.disconnected)
	})
}
