package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLog records that a student executed a ScheduledDay on a given date.
// Logs are append-only: re-completing the same day writes a new record
// rather than overwriting the prior one.
type SessionLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID      primitive.ObjectID `bson:"dayId" json:"dayId"`
	StudentID  primitive.ObjectID `bson:"studentId" json:"studentId"`
	LoggedDate time.Time          `bson:"loggedDate" json:"loggedDate"` // Calendar date the session was logged for
	Completed  bool               `bson:"completed" json:"completed"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// ExerciseLog is the as-performed record for one ExercisePrescription
// within a SessionLog. RepsPerformed and LoadsUsed are parallel slices,
// one entry per set; both default to a single-element sequence derived
// from the prescription when the student records no override, so a row
// exists even for untouched prescriptions.
type ExerciseLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionLogID   primitive.ObjectID `bson:"sessionLogId" json:"sessionLogId"`
	PrescriptionID primitive.ObjectID `bson:"prescriptionId" json:"prescriptionId"`
	StudentID      primitive.ObjectID `bson:"studentId" json:"studentId"`
	SetsCompleted  int                `bson:"setsCompleted" json:"setsCompleted"`
	RepsPerformed  []int              `bson:"repsPerformed" json:"repsPerformed"`
	LoadsUsed      []float64          `bson:"loadsUsed" json:"loadsUsed"`
	Completed      bool               `bson:"completed" json:"completed"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
