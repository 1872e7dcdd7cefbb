package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

const DefaultSoilMoisture = "0%"

// Plant is a watering-schedule record owned by a single user.
type Plant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"plant_id"`
	Owner        string             `bson:"owner" json:"owner"`
	Name         string             `bson:"name" json:"name"`
	ImageURL     *string            `bson:"image_url" json:"image_url"`
	AutoMode     bool               `bson:"auto_mode" json:"auto_mode"`
	Watering     WateringFields     `bson:"watering" json:"watering"`
	Status       Status             `bson:"status" json:"status"`
	SoilMoisture string             `bson:"soil_moisture" json:"soil_moisture"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// PlantChanges holds the fields an update actually sets. Nil means untouched.
type PlantChanges struct {
	Name      *string
	ImageURL  *string
	AutoMode  *bool
	Watering  *WateringFields
	Status    *Status
	UpdatedAt time.Time
}

// Apply overlays the changes onto a copy of p.
func (ch PlantChanges) Apply(p Plant) Plant {
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.ImageURL != nil {
		url := *ch.ImageURL
		p.ImageURL = &url
	}
	if ch.AutoMode != nil {
		p.AutoMode = *ch.AutoMode
	}
	if ch.Watering != nil {
		p.Watering = *ch.Watering
	}
	if ch.Status != nil {
		p.Status = *ch.Status
	}
	if !ch.UpdatedAt.IsZero() {
		p.UpdatedAt = ch.UpdatedAt
	}
	return p
}

// SetDoc renders the changes as a $set document.
func (ch PlantChanges) SetDoc() bson.M {
	set := bson.M{}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.ImageURL != nil {
		set["image_url"] = *ch.ImageURL
	}
	if ch.AutoMode != nil {
		set["auto_mode"] = *ch.AutoMode
	}
	if ch.Watering != nil {
		set["watering"] = *ch.Watering
	}
	if ch.Status != nil {
		set["status"] = *ch.Status
	}
	if !ch.UpdatedAt.IsZero() {
		set["updated_at"] = ch.UpdatedAt
	}
	return set
}

type CreatePlantRequest struct {
	Name     string          `json:"name" validate:"required"`
	ImageURL *string         `json:"image_url,omitempty"`
	AutoMode *bool           `json:"auto_mode" validate:"required"`
	Watering *WateringFields `json:"watering" validate:"required"`
}

// WateringUpdate is a partial schedule plus the mandatory start/stop command.
type WateringUpdate struct {
	WateringFields
	Command *Command `json:"command,omitempty"`
}

type UpdatePlantRequest struct {
	Name     *string         `json:"name,omitempty"`
	ImageURL *string         `json:"image_url,omitempty"`
	AutoMode *bool           `json:"auto_mode,omitempty"`
	Watering *WateringUpdate `json:"watering,omitempty"`
}

type PlantListResponse struct {
	Plants []Plant `json:"plants"`
}
