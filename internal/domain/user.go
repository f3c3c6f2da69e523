package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleStudent Role = "student"
)

// User represents a user in the system (either a Trainer or a Student).
// The scheduling engine never checks passwords or roles itself; this
// record backs the identity/role provider and the trainer-student link.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	// ObjectIDs of Students coached by this Trainer.
	StudentIDs []primitive.ObjectID `bson:"studentIds,omitempty" json:"studentIds,omitempty"`

	// --- Student-specific ---
	// The Trainer coaching this Student, if any.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
