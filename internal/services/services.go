package services

import (
	"context"
	"errors"

	"github.com/klarkent2022/smart-irrigation/internal/events"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("image storage is not configured")
)

// detailError pairs a sentinel kind with the message shown to the caller.
type detailError struct {
	kind   error
	detail string
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) Unwrap() error { return e.kind }

func newError(kind error, detail string) error {
	return &detailError{kind: kind, detail: detail}
}

// StatusPublisher receives plant status changes.
type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error
}

// ImageStore persists plant images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
