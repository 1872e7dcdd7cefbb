package models

import (
	"errors"
	"fmt"
	"time"
)

type IntervalType string

const (
	IntervalDays   IntervalType = "days"
	IntervalWeeks  IntervalType = "weeks"
	IntervalMonths IntervalType = "months"
)

func (t IntervalType) Valid() bool {
	switch t {
	case IntervalDays, IntervalWeeks, IntervalMonths:
		return true
	}
	return false
}

// Command is the start/stop instruction carried by a watering update.
type Command string

const (
	CommandStart Command = "start"
	CommandStop  Command = "stop"
)

// Status returns the plant status a command produces.
func (c Command) Status() (Status, error) {
	switch c {
	case CommandStart:
		return StatusRunning, nil
	case CommandStop:
		return StatusStopped, nil
	}
	return "", fmt.Errorf("the 'command' field must be either 'start' or 'stop'")
}

// Schedule is a validated watering schedule. It is either *AutoSchedule or
// *ManualSchedule, selected by a plant's auto_mode.
type Schedule interface {
	Fields() WateringFields
	isSchedule()
}

type AutoSchedule struct {
	IntervalType  IntervalType
	IntervalValue int
	TimeOfDay     string
}

func (s *AutoSchedule) Fields() WateringFields {
	it, iv, tod := s.IntervalType, s.IntervalValue, s.TimeOfDay
	return WateringFields{IntervalType: &it, IntervalValue: &iv, TimeOfDay: &tod}
}

func (*AutoSchedule) isSchedule() {}

type ManualSchedule struct {
	Duration int
}

func (s *ManualSchedule) Fields() WateringFields {
	d := s.Duration
	return WateringFields{Duration: &d}
}

func (*ManualSchedule) isSchedule() {}

// WateringFields is the flat wire and storage form of a schedule. A nil field
// is absent.
type WateringFields struct {
	IntervalType  *IntervalType `json:"interval_type,omitempty" bson:"interval_type,omitempty"`
	IntervalValue *int          `json:"interval_value,omitempty" bson:"interval_value,omitempty"`
	TimeOfDay     *string       `json:"time_of_day,omitempty" bson:"time_of_day,omitempty"`
	Duration      *int          `json:"duration,omitempty" bson:"duration,omitempty"`
}

func (w WateringFields) IsEmpty() bool {
	return w.IntervalType == nil && w.IntervalValue == nil && w.TimeOfDay == nil && w.Duration == nil
}

func (w WateringFields) hasAutoFields() bool {
	return w.IntervalType != nil || w.IntervalValue != nil || w.TimeOfDay != nil
}

// Merge overlays the non-nil fields of patch onto w.
func (w WateringFields) Merge(patch WateringFields) WateringFields {
	if patch.IntervalType != nil {
		w.IntervalType = patch.IntervalType
	}
	if patch.IntervalValue != nil {
		w.IntervalValue = patch.IntervalValue
	}
	if patch.TimeOfDay != nil {
		w.TimeOfDay = patch.TimeOfDay
	}
	if patch.Duration != nil {
		w.Duration = patch.Duration
	}
	return w
}

var (
	errAutoShape   = errors.New("when auto_mode is true, watering must include 'interval_type', 'interval_value', and 'time_of_day'")
	errManualShape = errors.New("when auto_mode is false, watering must include 'duration'")
)

// Schedule builds the variant selected by autoMode. Missing variant fields,
// fields of the other variant and out-of-range values are rejected.
func (w WateringFields) Schedule(autoMode bool) (Schedule, error) {
	if autoMode {
		return w.autoSchedule()
	}
	return w.manualSchedule()
}

func (w WateringFields) autoSchedule() (*AutoSchedule, error) {
	if w.IntervalType == nil || w.IntervalValue == nil || w.TimeOfDay == nil {
		return nil, errAutoShape
	}
	if w.Duration != nil {
		return nil, errors.New("'duration' is not allowed when auto_mode is true")
	}
	if !w.IntervalType.Valid() {
		return nil, fmt.Errorf("'interval_type' must be one of days, weeks, months, got %q", *w.IntervalType)
	}
	if *w.IntervalValue <= 0 {
		return nil, errors.New("'interval_value' must be a positive integer")
	}
	tod, err := time.Parse("15:04", *w.TimeOfDay)
	if err != nil {
		return nil, fmt.Errorf("'time_of_day' must be HH:MM, got %q", *w.TimeOfDay)
	}
	// stored zero-padded, "8:00" becomes "08:00"
	return &AutoSchedule{
		IntervalType:  *w.IntervalType,
		IntervalValue: *w.IntervalValue,
		TimeOfDay:     tod.Format("15:04"),
	}, nil
}

func (w WateringFields) manualSchedule() (*ManualSchedule, error) {
	if w.Duration == nil {
		return nil, errManualShape
	}
	if w.hasAutoFields() {
		return nil, errors.New("'interval_type', 'interval_value' and 'time_of_day' are not allowed when auto_mode is false")
	}
	if *w.Duration <= 0 {
		return nil, errors.New("'duration' must be a positive integer")
	}
	return &ManualSchedule{Duration: *w.Duration}, nil
}
