package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/schedule"
)

// planFixture wires a plan service against in-memory repos with one
// trainer managing one student.
type planFixture struct {
	svc              PlanService
	userRepo         *fakeUserRepo
	planRepo         *fakePlanRepo
	dayRepo          *fakeDayRepo
	prescriptionRepo *fakePrescriptionRepo
	trainerID        primitive.ObjectID
	studentID        primitive.ObjectID
}

func newPlanFixture() *planFixture {
	clk := newClock()
	userRepo := newFakeUserRepo()
	planRepo := newFakePlanRepo(clk)
	dayRepo := newFakeDayRepo(clk)
	prescriptionRepo := newFakePrescriptionRepo(clk)

	trainerID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	userRepo.addUser(domain.User{ID: trainerID, Name: "Coach", Email: "coach@test.io", Role: domain.RoleTrainer, StudentIDs: []primitive.ObjectID{studentID}})
	userRepo.addUser(domain.User{ID: studentID, Name: "Sam", Email: "sam@test.io", Role: domain.RoleStudent, TrainerID: &trainerID})

	return &planFixture{
		svc:              NewPlanService(userRepo, planRepo, dayRepo, prescriptionRepo),
		userRepo:         userRepo,
		planRepo:         planRepo,
		dayRepo:          dayRepo,
		prescriptionRepo: prescriptionRepo,
		trainerID:        trainerID,
		studentID:        studentID,
	}
}

func validPlanInput() PlanInput {
	return PlanInput{
		Name:            "Phase 1: Hypertrophy",
		Goal:            "build muscle",
		StartDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
		SessionsPerWeek: 2,
		Days: []DayInput{
			{
				Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
				Name: "Push A",
				Exercises: []PrescriptionInput{
					{Name: "Bench Press", Sets: 4, Reps: "8-10", RestSeconds: 90},
					{Name: "Overhead Press", Sets: 3, Reps: "10", RestSeconds: 60},
					{Name: "Dips", Sets: 3, Reps: "AMRAP"},
				},
			},
			{
				Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
				// no name: weekday label is filled in
				Exercises: []PrescriptionInput{
					{Name: "Squat", Sets: 5, Reps: "5"},
				},
			},
		},
	}
}

// TestCreatePlanCommitsEverything verifies the happy path: the commit
// descriptor reports the plan, both days in authored order, and all four
// prescriptions, with positions assigned from authored order.
func TestCreatePlanCommitsEverything(t *testing.T) {
	f := newPlanFixture()

	commit, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, validPlanInput())
	if err != nil {
		t.Fatalf("CreatePlan returned error: %v", err)
	}
	if commit.PlanID == primitive.NilObjectID {
		t.Fatal("commit.PlanID is zero")
	}
	if got, want := len(commit.DayIDs), 2; got != want {
		t.Fatalf("committed days = %d, want %d", got, want)
	}
	if got, want := commit.PrescriptionsCommitted, 4; got != want {
		t.Errorf("committed prescriptions = %d, want %d", got, want)
	}

	plan, err := f.planRepo.GetByID(context.Background(), commit.PlanID)
	if err != nil {
		t.Fatalf("stored plan not found: %v", err)
	}
	if !plan.IsActive {
		t.Error("new plan should be active")
	}

	// The first day's prescriptions keep their authored order as positions.
	prescriptions, _ := f.prescriptionRepo.GetByDayID(context.Background(), commit.DayIDs[0])
	if len(prescriptions) != 3 {
		t.Fatalf("day 1 prescriptions = %d, want 3", len(prescriptions))
	}
	wantNames := []string{"Bench Press", "Overhead Press", "Dips"}
	for i, p := range prescriptions {
		if p.Name != wantNames[i] {
			t.Errorf("position %d: name = %q, want %q", i, p.Name, wantNames[i])
		}
		if p.Position != i {
			t.Errorf("prescription %q: position = %d, want %d", p.Name, p.Position, i)
		}
	}

	// The unnamed day gets its weekday label.
	day, err := f.dayRepo.GetByID(context.Background(), commit.DayIDs[1])
	if err != nil {
		t.Fatalf("stored day not found: %v", err)
	}
	if got, want := day.Name, "Wednesday"; got != want {
		t.Errorf("defaulted day name = %q, want %q", got, want)
	}
}

// TestCreatePlanValidation checks that each invalid input is rejected
// before anything is written.
func TestCreatePlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlanInput)
		wantErr error
	}{
		{
			name:    "missing name",
			mutate:  func(in *PlanInput) { in.Name = "" },
			wantErr: ErrPlanNameRequired,
		},
		{
			name:    "end before start",
			mutate:  func(in *PlanInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) },
			wantErr: ErrInvalidDateRange,
		},
		{
			name: "day outside plan range",
			mutate: func(in *PlanInput) {
				in.Days[0].Date = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: schedule.ErrOutOfRange,
		},
		{
			name: "duplicate date",
			mutate: func(in *PlanInput) {
				in.Days[1].Date = in.Days[0].Date
			},
			wantErr: schedule.ErrDuplicateDate,
		},
		{
			name: "nameless exercise",
			mutate: func(in *PlanInput) {
				in.Days[0].Exercises[1].Name = ""
			},
			wantErr: ErrExerciseNameless,
		},
		{
			name: "zero sets",
			mutate: func(in *PlanInput) {
				in.Days[1].Exercises[0].Sets = 0
			},
			wantErr: ErrInvalidSets,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newPlanFixture()
			input := validPlanInput()
			tc.mutate(&input)

			commit, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if commit != nil {
				t.Errorf("commit = %+v, want nil on validation failure", commit)
			}
			if len(f.planRepo.plans) != 0 || len(f.dayRepo.days) != 0 || len(f.prescriptionRepo.prescriptions) != 0 {
				t.Error("validation failure must not persist anything")
			}
		})
	}
}

// TestCreatePlanForUnmanagedStudent verifies that a trainer cannot author
// a plan for a student coached by someone else, or for nobody.
func TestCreatePlanForUnmanagedStudent(t *testing.T) {
	f := newPlanFixture()
	stranger := primitive.NewObjectID()
	f.userRepo.addUser(domain.User{ID: stranger, Email: "free@test.io", Role: domain.RoleStudent})

	_, err := f.svc.CreatePlan(context.Background(), f.trainerID, stranger, validPlanInput())
	if !errors.Is(err, ErrStudentNotManaged) {
		t.Fatalf("error = %v, want ErrStudentNotManaged", err)
	}

	_, err = f.svc.CreatePlan(context.Background(), f.trainerID, primitive.NewObjectID(), validPlanInput())
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("error = %v, want ErrStudentNotFound", err)
	}
}

// TestCreatePlanPartialFailure simulates a write failure on the second
// day. The plan header and the first day committed, and the returned
// descriptor must say so alongside the error.
func TestCreatePlanPartialFailure(t *testing.T) {
	f := newPlanFixture()
	f.dayRepo.failCreateAfter = 1

	commit, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, validPlanInput())
	if err == nil {
		t.Fatal("expected error from failing day write")
	}
	if commit == nil {
		t.Fatal("partial failure must still return the commit descriptor")
	}
	if commit.PlanID == primitive.NilObjectID {
		t.Error("commit.PlanID should report the persisted plan header")
	}
	if got, want := len(commit.DayIDs), 1; got != want {
		t.Errorf("committed days = %d, want %d", got, want)
	}
	if got, want := commit.PrescriptionsCommitted, 3; got != want {
		t.Errorf("committed prescriptions = %d, want %d", got, want)
	}

	// The store really does hold the partial plan: no rollback happened.
	if len(f.planRepo.plans) != 1 {
		t.Error("plan header should remain persisted")
	}
}

// TestGetPlanDetail verifies access control and the assembled read model:
// days come back date-ascending with their prescriptions in position order.
func TestGetPlanDetail(t *testing.T) {
	f := newPlanFixture()
	commit, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, validPlanInput())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	for _, actor := range []primitive.ObjectID{f.trainerID, f.studentID} {
		detail, err := f.svc.GetPlanDetail(context.Background(), actor, commit.PlanID)
		if err != nil {
			t.Fatalf("GetPlanDetail(%s): %v", actor.Hex(), err)
		}
		if got, want := len(detail.Days), 2; got != want {
			t.Fatalf("days = %d, want %d", got, want)
		}
		if got, want := detail.DurationWeeks, 4; got != want {
			t.Errorf("duration weeks = %d, want %d", got, want)
		}
		if !detail.Days[0].Date.Before(detail.Days[1].Date) {
			t.Error("days should be ordered by date ascending")
		}
	}

	if _, err := f.svc.GetPlanDetail(context.Background(), primitive.NewObjectID(), commit.PlanID); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("stranger access error = %v, want ErrPlanAccessDenied", err)
	}
	if _, err := f.svc.GetPlanDetail(context.Background(), f.trainerID, primitive.NewObjectID()); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("missing plan error = %v, want ErrPlanNotFound", err)
	}
}

// TestPlanListingsNewestFirst verifies that list queries surface the most
// recently created plan first, which is what makes it authoritative for
// today resolution.
func TestPlanListingsNewestFirst(t *testing.T) {
	f := newPlanFixture()

	first := validPlanInput()
	first.Name = "Old Block"
	if _, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, first); err != nil {
		t.Fatalf("CreatePlan(old): %v", err)
	}
	second := validPlanInput()
	second.Name = "New Block"
	second.StartDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	second.EndDate = time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)
	second.Days = nil
	if _, err := f.svc.CreatePlan(context.Background(), f.trainerID, f.studentID, second); err != nil {
		t.Fatalf("CreatePlan(new): %v", err)
	}

	plans, err := f.svc.GetPlansForStudent(context.Background(), f.studentID)
	if err != nil {
		t.Fatalf("GetPlansForStudent: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if got, want := plans[0].Name, "New Block"; got != want {
		t.Errorf("first listed plan = %q, want %q", got, want)
	}
}
