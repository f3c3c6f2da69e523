package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/repository"
	"trainup/training-app/internal/schedule"
)

// --- Error Definitions ---
var (
	ErrPlanNameRequired  = errors.New("plan name is required")
	ErrInvalidDateRange  = errors.New("plan end date must not be before start date")
	ErrInvalidSets       = errors.New("prescribed sets must be at least 1")
	ErrExerciseNameless  = errors.New("every prescribed exercise needs a name")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanAccessDenied  = errors.New("access denied to this plan")
	ErrStudentNotManaged = errors.New("student is not coached by this trainer")
)

// --- Inputs ---

// PlanInput is the trainer-authored content of a new plan: the header
// fields plus the scheduled days in the order they should be written.
type PlanInput struct {
	Name            string
	Goal            string
	StartDate       time.Time
	EndDate         time.Time
	SessionsPerWeek int
	Days            []DayInput
}

// DayInput is one candidate scheduled day. Exercises may be empty: a day
// with no prescriptions is valid ("rest with cardio").
type DayInput struct {
	Date      time.Time
	Name      string
	Notes     string
	Exercises []PrescriptionInput
}

// PrescriptionInput is one prescribed movement in authored order. The
// slice index becomes the stored position.
type PrescriptionInput struct {
	Name          string
	Sets          int
	Reps          string
	RestSeconds   int
	SuggestedLoad string
	Notes         string
}

// PlanCommit describes which steps of a plan creation actually committed.
// Creation is a multi-step sequence without a transaction: when an error
// is returned alongside a non-nil PlanCommit, the plan header and the
// listed days exist in the store and the caller is expected to repair or
// append rather than re-create.
type PlanCommit struct {
	PlanID                 primitive.ObjectID   `json:"planId"`
	DayIDs                 []primitive.ObjectID `json:"dayIds"`
	PrescriptionsCommitted int                  `json:"prescriptionsCommitted"`
}

// --- Read models ---

// DayDetail is a scheduled day with its ordered prescriptions.
type DayDetail struct {
	domain.ScheduledDay
	Prescriptions []domain.ExercisePrescription `json:"prescriptions"`
}

// PlanDetail is a plan with its days, each carrying its prescriptions,
// plus the derived duration.
type PlanDetail struct {
	domain.Plan
	DurationWeeks int         `json:"durationWeeks"`
	Days          []DayDetail `json:"days"`
}

// --- Service Interface ---

type PlanService interface {
	CreatePlan(ctx context.Context, trainerID, studentID primitive.ObjectID, input PlanInput) (*PlanCommit, error)
	GetPlanDetail(ctx context.Context, actorID, planID primitive.ObjectID) (*PlanDetail, error)
	GetPlansForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	GetPlansForStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error)
	GetStudentPlansForTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) ([]domain.Plan, error)
}

// --- Service Implementation ---

type planService struct {
	userRepo         repository.UserRepository
	planRepo         repository.PlanRepository
	dayRepo          repository.ScheduledDayRepository
	prescriptionRepo repository.PrescriptionRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	dayRepo repository.ScheduledDayRepository,
	prescriptionRepo repository.PrescriptionRepository,
) PlanService {
	return &planService{
		userRepo:         userRepo,
		planRepo:         planRepo,
		dayRepo:          dayRepo,
		prescriptionRepo: prescriptionRepo,
	}
}

// CreatePlan validates and persists a plan together with its scheduled
// days and their prescriptions, in caller-supplied order.
//
// The write sequence is plan header, then each day, then that day's
// prescriptions. There is no transaction and no rollback: on a
// persistence failure the partial PlanCommit is returned together with
// the error so the caller can see exactly what exists.
func (s *planService) CreatePlan(ctx context.Context, trainerID, studentID primitive.ObjectID, input PlanInput) (*PlanCommit, error) {
	// 1. Validate inputs
	if trainerID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and student ID are required")
	}
	if input.Name == "" {
		return nil, ErrPlanNameRequired
	}
	start := schedule.NormalizeDate(input.StartDate)
	end := schedule.NormalizeDate(input.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	// 2. Verify the student is coached by this trainer
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.TrainerID == nil || *student.TrainerID != trainerID {
		return nil, ErrStudentNotManaged
	}

	// 3. Run every candidate day through the scheduler before anything is
	// written, so a validation failure never leaves a partial plan behind.
	plan := &domain.Plan{
		TrainerID:       trainerID,
		StudentID:       studentID,
		Name:            input.Name,
		Goal:            input.Goal,
		StartDate:       start,
		EndDate:         end,
		SessionsPerWeek: input.SessionsPerWeek,
		IsActive:        true,
	}
	drafts := make([]*domain.ScheduledDay, 0, len(input.Days))
	accepted := make([]domain.ScheduledDay, 0, len(input.Days))
	for _, d := range input.Days {
		draft, err := schedule.NewScheduledDay(plan, accepted, d.Date, d.Name)
		if err != nil {
			return nil, err
		}
		draft.Notes = d.Notes
		drafts = append(drafts, draft)
		accepted = append(accepted, *draft)

		for _, ex := range d.Exercises {
			if ex.Name == "" {
				return nil, ErrExerciseNameless
			}
			if ex.Sets < 1 {
				return nil, ErrInvalidSets
			}
		}
	}

	// 4. Persist the plan header
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	commit := &PlanCommit{PlanID: planID, DayIDs: []primitive.ObjectID{}}

	// 5. Persist days and their prescriptions, in authored order
	for i, draft := range drafts {
		draft.PlanID = planID
		dayID, err := s.dayRepo.Create(ctx, draft)
		if err != nil {
			return commit, err
		}
		commit.DayIDs = append(commit.DayIDs, dayID)

		for pos, ex := range input.Days[i].Exercises {
			prescription := &domain.ExercisePrescription{
				DayID:         dayID,
				Position:      pos, // 0-based authored order
				Name:          ex.Name,
				Sets:          ex.Sets,
				Reps:          ex.Reps,
				RestSeconds:   ex.RestSeconds,
				SuggestedLoad: ex.SuggestedLoad,
				Notes:         ex.Notes,
			}
			if _, err := s.prescriptionRepo.Create(ctx, prescription); err != nil {
				return commit, err
			}
			commit.PrescriptionsCommitted++
		}
	}

	return commit, nil
}

// GetPlanDetail loads a plan with its days and prescriptions. The actor
// must be either the owning trainer or the assigned student.
func (s *planService) GetPlanDetail(ctx context.Context, actorID, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.TrainerID != actorID && plan.StudentID != actorID {
		return nil, ErrPlanAccessDenied
	}

	days, err := s.dayRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	detail := &PlanDetail{
		Plan:          *plan,
		DurationWeeks: schedule.DurationWeeks(plan.StartDate, plan.EndDate),
		Days:          make([]DayDetail, 0, len(days)),
	}
	for _, day := range days {
		prescriptions, err := s.prescriptionRepo.GetByDayID(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		detail.Days = append(detail.Days, DayDetail{ScheduledDay: day, Prescriptions: prescriptions})
	}
	return detail, nil
}

// GetPlansForTrainer retrieves all plans authored by the trainer, newest first.
func (s *planService) GetPlansForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.planRepo.GetByTrainerID(ctx, trainerID)
}

// GetPlansForStudent retrieves all plans assigned to the student, newest first.
func (s *planService) GetPlansForStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}
	return s.planRepo.GetByStudentID(ctx, studentID)
}

// GetStudentPlansForTrainer retrieves the plans a trainer authored for one
// of their students, newest first.
func (s *planService) GetStudentPlansForTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) ([]domain.Plan, error) {
	if trainerID == primitive.NilObjectID || studentID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and student ID are required")
	}
	return s.planRepo.GetByStudentAndTrainerID(ctx, studentID, trainerID)
}
