package models

import (
	"time"
)

// Metric describes one datapoint family. All four families share the same
// table shape apart from the value's column type and the extra exercise
// detail columns, so repositories and services are parameterized by this
// descriptor instead of being copied per family.
type Metric struct {
	Name         string // singular name used in error details and events
	Table        string // backing table
	Path         string // URL segment under /data
	IntegerValue bool   // value column is INTEGER instead of DOUBLE PRECISION
	HasDetails   bool   // table carries name/reps columns
}

var (
	MetricWeight   = Metric{Name: "weight", Table: "weights", Path: "weight", IntegerValue: true}
	MetricCalorie  = Metric{Name: "calorie", Table: "calories", Path: "calories"}
	MetricStep     = Metric{Name: "step", Table: "steps", Path: "steps"}
	MetricExercise = Metric{Name: "exercise", Table: "exercise", Path: "exercise", HasDetails: true}
)

// Metrics lists every datapoint family served under /data.
var Metrics = []Metric{MetricWeight, MetricCalorie, MetricStep, MetricExercise}

// DatapointDB represents one per-user, per-date sample. Name and Reps are
// only populated for the exercise family.
type DatapointDB struct {
	ID        int64     `json:"id" db:"id"`                 // Primary key
	Datapoint float64   `json:"datapoint" db:"datapoint"`   // Sample value
	Date      time.Time `json:"date" db:"date"`             // Calendar day, not a timestamp
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	OwnerID   int64     `json:"owner_id" db:"owner_id"`     // Owning user
	Name      *string   `json:"name,omitempty" db:"name"`   // Exercise name
	Reps      *int64    `json:"reps,omitempty" db:"reps"`   // Exercise repetitions
}
