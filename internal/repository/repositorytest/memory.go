// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"github.com/klarkent2022/smart-irrigation/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.Mutex
	users map[string]models.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUsers() *Users {
	return &Users{users: map[string]models.User{}}
}

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.Username] = *u
	return nil
}

func (r *Users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type Plants struct {
	mu     sync.Mutex
	plants map[primitive.ObjectID]models.Plant
	Err    error
}

func NewPlants() *Plants {
	return &Plants{plants: map[primitive.ObjectID]models.Plant{}}
}

var _ repository.PlantRepository = (*Plants)(nil)

func (r *Plants) Create(_ context.Context, p *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	r.plants[p.ID] = *p
	return nil
}

func (r *Plants) FindByID(_ context.Context, id string) (*models.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	p, ok := r.plants[objID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Plants) FindByOwner(_ context.Context, owner string) ([]models.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []models.Plant
	for _, p := range r.plants {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r *Plants) Update(_ context.Context, id primitive.ObjectID, owner string, ch models.PlantChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	p, ok := r.plants[id]
	if !ok || p.Owner != owner {
		return repository.ErrNotFound
	}
	r.plants[id] = ch.Apply(p)
	return nil
}

// Stored returns the persisted copy of a plant, bypassing ownership.
func (r *Plants) Stored(id primitive.ObjectID) (models.Plant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plants[id]
	return p, ok
}
