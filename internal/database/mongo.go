package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func ConnectMongo(uri, dbName string, logger *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorf("MongoDB connection failed: %v", err)
		return nil, nil, err
	}

	if err := pingOrDisconnect(ctx, client, logger); err != nil {
		return nil, nil, err
	}

	logger.Info("MongoDB connected successfully")
	return client.Database(dbName), client, nil
}

type pingDisconnecter interface {
	Pinger
	Disconnect(ctx context.Context) error
}

// pingOrDisconnect releases the client's pool when the first ping fails.
func pingOrDisconnect(ctx context.Context, client pingDisconnecter, logger *zap.SugaredLogger) error {
	err := client.Ping(ctx, nil)
	if err == nil {
		return nil
	}
	logger.Errorf("MongoDB ping failed: %v", err)
	dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if derr := client.Disconnect(dctx); derr != nil {
		logger.Warnf("MongoDB disconnect after failed ping: %v", derr)
	}
	return err
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// CheckConnection is the store self-test. It never returns an error: failures
// are logged and reported as false.
func CheckConnection(ctx context.Context, p Pinger, logger *zap.SugaredLogger) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Ping(ctx, nil); err != nil {
		logger.Warnf("MongoDB connectivity check failed: %v", err)
		return false
	}
	return true
}
