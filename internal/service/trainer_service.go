package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrStudentNotFound        = errors.New("student user not found")
	ErrStudentNotRole         = errors.New("user found but is not a student")
	ErrStudentAlreadyAssigned = errors.New("student is already assigned to a trainer")
)

// --- Service Interface ---
type TrainerService interface {
	AddStudentByEmail(ctx context.Context, trainerID primitive.ObjectID, studentEmail string) (*domain.User, error)
	GetManagedStudents(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
}

// --- Service Implementation ---

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo repository.UserRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository) TrainerService {
	return &trainerService{userRepo: userRepo}
}

// AddStudentByEmail finds a student by email and assigns them to the trainer.
func (s *trainerService) AddStudentByEmail(ctx context.Context, trainerID primitive.ObjectID, studentEmail string) (*domain.User, error) {
	// 1. Validate Input
	if trainerID == primitive.NilObjectID || studentEmail == "" {
		return nil, errors.New("trainer ID and student email are required")
	}

	// 2. Find the potential student user
	student, err := s.userRepo.GetByEmail(ctx, studentEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// 3. Verify the user is actually a student
	if student.Role != domain.RoleStudent {
		return nil, ErrStudentNotRole
	}

	// 4. Check if the student is already assigned to any trainer
	if student.TrainerID != nil && *student.TrainerID != primitive.NilObjectID {
		if *student.TrainerID == trainerID {
			// Already managed by this trainer, treat as success
			return student, nil
		}
		return nil, ErrStudentAlreadyAssigned
	}

	// 5. Link both sides (no transaction; second write failing leaves the
	// trainer's list with a dangling ID the student record never confirms)
	err = s.userRepo.AddStudentIDToTrainer(ctx, trainerID, student.ID)
	if err != nil {
		return nil, err
	}
	err = s.userRepo.SetTrainerForStudent(ctx, student.ID, trainerID)
	if err != nil {
		return nil, err
	}

	student.TrainerID = &trainerID
	return student, nil
}

// GetManagedStudents retrieves the list of students managed by the trainer.
func (s *trainerService) GetManagedStudents(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	students, err := s.userRepo.GetStudentsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	// Clear password hashes before returning
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}
