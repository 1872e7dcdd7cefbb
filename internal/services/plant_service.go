package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klarkent2022/smart-irrigation/internal/events"
	"github.com/klarkent2022/smart-irrigation/internal/models"
	"github.com/klarkent2022/smart-irrigation/internal/repository"
	"github.com/klarkent2022/smart-irrigation/internal/storage"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
	"go.uber.org/zap"
)

const notFoundDetail = "Plant not found or you do not have access to this plant"

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type PlantService struct {
	repo          repository.PlantRepository
	publisher     StatusPublisher
	images        ImageStore
	maxImageBytes int64
	maxImageSide  int
	log           *zap.Logger
}

type PlantOption func(*PlantService)

func WithStatusPublisher(p StatusPublisher) PlantOption {
	return func(s *PlantService) { s.publisher = p }
}

// WithImageStore enables SetImage. Uploads larger than maxBytes are rejected
// and stored images are scaled to fit maxSide pixels.
func WithImageStore(store ImageStore, maxBytes int64, maxSide int) PlantOption {
	return func(s *PlantService) {
		s.images = store
		s.maxImageBytes = maxBytes
		s.maxImageSide = maxSide
	}
}

func NewPlantService(repo repository.PlantRepository, logger *zap.Logger, opts ...PlantOption) *PlantService {
	s := &PlantService{repo: repo, log: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PlantService) Create(ctx context.Context, owner string, req models.CreatePlantRequest) (*models.Plant, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newError(ErrValidation, err.Error())
	}
	sched, err := req.Watering.Schedule(*req.AutoMode)
	if err != nil {
		return nil, newError(ErrValidation, err.Error())
	}

	p := &models.Plant{
		Owner:        owner,
		Name:         req.Name,
		ImageURL:     req.ImageURL,
		AutoMode:     *req.AutoMode,
		Watering:     sched.Fields(),
		Status:       models.StatusStopped,
		SoilMoisture: models.DefaultSoilMoisture,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}

	s.log.Info("plant created", zap.String("owner", owner), zap.String("plant_id", p.ID.Hex()))
	return p, nil
}

// List returns the caller's plants. Owning no plants is reported as
// ErrNotFound rather than an empty list.
func (s *PlantService) List(ctx context.Context, owner string) ([]models.Plant, error) {
	plants, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	if len(plants) == 0 {
		return nil, newError(ErrNotFound, "No plants found for this user")
	}
	return plants, nil
}

func (s *PlantService) Get(ctx context.Context, id, owner string) (*models.Plant, error) {
	return s.owned(ctx, id, owner)
}

// owned loads a plant and hides plants that belong to someone else behind the
// same error as a missing one.
func (s *PlantService) owned(ctx context.Context, id, owner string) (*models.Plant, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, notFoundDetail)
		}
		return nil, fmt.Errorf("get plant: %w", err)
	}
	if p.Owner != owner {
		return nil, newError(ErrNotFound, notFoundDetail)
	}
	return p, nil
}

// Update applies the fields present in req. A watering payload must carry a
// command, which sets the status and is never stored; its remaining fields are
// merged into the stored schedule.
func (s *PlantService) Update(ctx context.Context, id, owner string, req models.UpdatePlantRequest) (*models.Plant, error) {
	var (
		status *models.Status
		cmd    models.Command
		patch  models.WateringFields
	)
	if req.Watering != nil {
		if req.Watering.Command == nil {
			return nil, newError(ErrValidation, "The watering field must include a 'command' field.")
		}
		cmd = *req.Watering.Command
		st, err := cmd.Status()
		if err != nil {
			return nil, newError(ErrValidation, err.Error())
		}
		status = &st
		patch = req.Watering.WateringFields
	}

	p, err := s.owned(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	ch := models.PlantChanges{
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		AutoMode:  req.AutoMode,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}

	autoMode := p.AutoMode
	modeChanged := req.AutoMode != nil && *req.AutoMode != p.AutoMode
	watering := p.Watering
	switch {
	case modeChanged:
		// the stored schedule belongs to the other variant; start over
		if patch.IsEmpty() {
			return nil, newError(ErrValidation, "changing auto_mode requires a complete watering schedule for the new mode")
		}
		autoMode = *req.AutoMode
		watering = patch
	case !patch.IsEmpty():
		watering = p.Watering.Merge(patch)
	}
	if modeChanged || !patch.IsEmpty() {
		sched, err := watering.Schedule(autoMode)
		if err != nil {
			return nil, newError(ErrValidation, err.Error())
		}
		fields := sched.Fields()
		ch.Watering = &fields
	}

	if err := s.repo.Update(ctx, p.ID, owner, ch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, notFoundDetail)
		}
		return nil, fmt.Errorf("update plant: %w", err)
	}

	updated := ch.Apply(*p)
	if status != nil && *status != p.Status {
		s.publishStatus(ctx, &updated, cmd)
	}
	return &updated, nil
}

// SetImage stores a png or jpeg, scaled to the configured size, and points
// image_url at it.
func (s *PlantService) SetImage(ctx context.Context, id, owner, contentType string, data []byte) (*models.Plant, error) {
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, newError(ErrValidation, fmt.Sprintf("unsupported image type %q, expected png or jpeg", contentType))
	}
	if len(data) == 0 {
		return nil, newError(ErrValidation, "image is empty")
	}
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return nil, newError(ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.maxImageBytes))
	}

	p, err := s.owned(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	fitted, err := storage.FitImage(data, contentType, s.maxImageSide)
	if err != nil {
		if errors.Is(err, storage.ErrUndecodable) {
			return nil, newError(ErrValidation, "image could not be decoded")
		}
		return nil, fmt.Errorf("fit image: %w", err)
	}

	key := fmt.Sprintf("plants/%s/%s/%s%s", owner, p.ID.Hex(), uuid.NewString(), ext)
	url, err := s.images.Upload(ctx, key, contentType, fitted)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, newError(ErrStorageUnavailable, "image storage is temporarily unavailable")
		}
		return nil, fmt.Errorf("upload image: %w", err)
	}

	ch := models.PlantChanges{ImageURL: &url, UpdatedAt: time.Now().UTC()}
	if err := s.repo.Update(ctx, p.ID, owner, ch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, notFoundDetail)
		}
		return nil, fmt.Errorf("update plant image: %w", err)
	}

	updated := ch.Apply(*p)
	return &updated, nil
}

// publishStatus is best-effort: the update is already stored.
func (s *PlantService) publishStatus(ctx context.Context, p *models.Plant, cmd models.Command) {
	if s.publisher == nil {
		return
	}
	ev := events.NewStatusChanged(p.ID.Hex(), p.Owner, string(cmd), string(p.Status))
	if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil {
		s.log.Warn("publish status change failed",
			zap.String("plant_id", ev.PlantID),
			zap.String("status", ev.Status),
			zap.Error(err),
		)
	}
}
