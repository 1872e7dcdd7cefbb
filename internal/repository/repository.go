package repository

import (
	"context"
	"errors"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// PlantRepository defines the interface for plant data operations. Ownership
// checks are the caller's job except in Update, which also filters on owner.
type PlantRepository interface {
	Create(ctx context.Context, p *models.Plant) error
	FindByID(ctx context.Context, id string) (*models.Plant, error)
	FindByOwner(ctx context.Context, owner string) ([]models.Plant, error)
	Update(ctx context.Context, id primitive.ObjectID, owner string, ch models.PlantChanges) error
}
