package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data,
// including the trainer-student link.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddStudentIDToTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error
	SetTrainerForStudent(ctx context.Context, studentID, trainerID primitive.ObjectID) error
	GetStudentsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
}

// PlanRepository defines the interface for interacting with plan data.
// List queries return plans ordered by creation time, newest first.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error)
	GetActiveByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error)
	GetByStudentAndTrainerID(ctx context.Context, studentID, trainerID primitive.ObjectID) ([]domain.Plan, error)
	SetActive(ctx context.Context, planID primitive.ObjectID, active bool) error
}

// ScheduledDayRepository defines the interface for interacting with
// scheduled day data. GetByPlanID returns days ordered by date ascending.
type ScheduledDayRepository interface {
	Create(ctx context.Context, day *domain.ScheduledDay) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledDay, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledDay, error)
}

// PrescriptionRepository defines the interface for interacting with
// exercise prescription data. GetByDayID returns prescriptions ordered
// by position ascending.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *domain.ExercisePrescription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExercisePrescription, error)
	GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.ExercisePrescription, error)
}

// SessionLogRepository defines the interface for interacting with
// session log data. Logs are append-only; there is no Update.
type SessionLogRepository interface {
	Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionLog, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.SessionLog, error)
	GetByDayAndStudentID(ctx context.Context, dayID, studentID primitive.ObjectID) ([]domain.SessionLog, error)
}

// ExerciseLogRepository defines the interface for interacting with
// exercise log data. CreateMany persists one session's logs as a batch.
type ExerciseLogRepository interface {
	CreateMany(ctx context.Context, logs []domain.ExerciseLog) ([]primitive.ObjectID, error)
	GetBySessionLogID(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.ExerciseLog, error)
}

// UploadRepository defines the interface for interacting with session
// attachment metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetBySessionLogID(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.Upload, error)
}
