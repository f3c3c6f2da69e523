package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduledDay is one calendar-anchored training session within a Plan.
type ScheduledDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID    primitive.ObjectID `bson:"planId" json:"planId"` // Link back to the plan
	Date      time.Time          `bson:"date" json:"date"`     // UTC midnight; unique within the plan
	DayOfWeek string             `bson:"dayOfWeek" json:"dayOfWeek"` // Derived weekday label, display only
	Name      string             `bson:"name" json:"name"`           // e.g., "Day 1: Upper Body"
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Prescriptions are linked via ExercisePrescription.DayID.
}
