// internal/domain/prescription.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExercisePrescription is one prescribed movement within a ScheduledDay.
// Position is the 0-based authored order; it is unique and contiguous
// within a day and defines both display and performance order.
type ExercisePrescription struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID         primitive.ObjectID `bson:"dayId" json:"dayId"` // Owning ScheduledDay
	Position      int                `bson:"position" json:"position"`
	Name          string             `bson:"name" json:"name"`
	Sets          int                `bson:"sets" json:"sets"`                 // Prescribed sets, >= 1
	Reps          string             `bson:"reps" json:"reps"`                 // Free-form, e.g. "8-10", "AMRAP"
	RestSeconds   int                `bson:"restSeconds" json:"restSeconds"`   // Stored only; no timer scheduling
	SuggestedLoad string             `bson:"suggestedLoad,omitempty" json:"suggestedLoad,omitempty"` // e.g. "60kg", "RPE 8"
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`                 // Coaching cues
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
