package repository

import (
	"context"
	"errors"
	"time"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepo struct {
	col   *mongo.Collection
	retry RetryPolicy
}

func NewMongoUserRepo(ctx context.Context, db *mongo.Database, collection string, retry RetryPolicy) (UserRepository, error) {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &mongoUserRepo{col: col, retry: retry}, nil
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	insert := func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, u)
		return err
	}
	// the salted hash is unique to this registration
	committed := func(ctx context.Context) (bool, error) {
		var stored models.User
		err := r.col.FindOne(ctx, bson.M{"_id": u.Username}).Decode(&stored)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return stored.HashedPassword == u.HashedPassword && stored.Email == u.Email, nil
	}
	return r.retry.insert(ctx, insert, committed)
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": username})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.retry.do(ctx, func(ctx context.Context) error {
		err := r.col.FindOne(ctx, filter).Decode(&u)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
