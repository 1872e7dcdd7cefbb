package repository

import (
	"context"
	"errors"
	"time"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPlantRepo struct {
	col   *mongo.Collection
	retry RetryPolicy
}

func NewMongoPlantRepo(ctx context.Context, db *mongo.Database, collection string, retry RetryPolicy) (PlantRepository, error) {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return &mongoPlantRepo{col: col, retry: retry}, nil
}

// Create assigns p.ID before inserting so a retried insert cannot duplicate
// the document.
func (r *mongoPlantRepo) Create(ctx context.Context, p *models.Plant) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	insert := func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, p)
		return err
	}
	// _id was assigned above, so a stored document with it is this one
	committed := func(ctx context.Context) (bool, error) {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": p.ID, "owner": p.Owner})
		return n > 0, err
	}
	return r.retry.insert(ctx, insert, committed)
}

// FindByID treats a malformed id the same as a missing document.
func (r *mongoPlantRepo) FindByID(ctx context.Context, id string) (*models.Plant, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Plant
	err = r.retry.do(ctx, func(ctx context.Context) error {
		err := r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&p)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPlantRepo) FindByOwner(ctx context.Context, owner string) ([]models.Plant, error) {
	var plants []models.Plant
	err := r.retry.do(ctx, func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		cur, err := r.col.Find(ctx, bson.M{"owner": owner}, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)
		plants = plants[:0]
		return cur.All(ctx, &plants)
	})
	if err != nil {
		return nil, err
	}
	return plants, nil
}

// Update applies ch with $set. There is no version check: concurrent updates
// to the same plant are last-write-wins.
func (r *mongoPlantRepo) Update(ctx context.Context, id primitive.ObjectID, owner string, ch models.PlantChanges) error {
	set := ch.SetDoc()
	if len(set) == 0 {
		return nil
	}
	return r.retry.do(ctx, func(ctx context.Context) error {
		res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "owner": owner}, bson.M{"$set": set})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}
