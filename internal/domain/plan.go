// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a calendar-bound training program authored by a trainer for one student.
type Plan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who created the plan
	StudentID       primitive.ObjectID `bson:"studentId" json:"studentId"` // Who the plan is for
	Name            string             `bson:"name" json:"name"`           // e.g., "Phase 1: Hypertrophy"
	Goal            string             `bson:"goal,omitempty" json:"goal,omitempty"`
	StartDate       time.Time          `bson:"startDate" json:"startDate"` // First calendar day covered by the plan
	EndDate         time.Time          `bson:"endDate" json:"endDate"`     // Last calendar day, inclusive; never before StartDate
	SessionsPerWeek int                `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
