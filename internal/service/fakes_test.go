package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/repository"
)

// In-memory repository fakes. Each mirrors the sort order contract of its
// Mongo counterpart so service-level ordering assertions are meaningful.
// A fake's failCreateAfter field makes the Nth create call fail, which is
// how the partial-commit paths are exercised.

var errFakeWrite = errors.New("simulated write failure")

// clock hands out strictly increasing timestamps so createdAt ordering is
// deterministic inside a single test.
type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.RepositoryError("user with this email already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) AddStudentIDToTrainer(ctx context.Context, trainerID, studentID primitive.ObjectID) error {
	trainer, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range trainer.StudentIDs {
		if id == studentID {
			return nil
		}
	}
	trainer.StudentIDs = append(trainer.StudentIDs, studentID)
	return nil
}

func (r *fakeUserRepo) SetTrainerForStudent(ctx context.Context, studentID, trainerID primitive.ObjectID) error {
	student, ok := r.users[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	student.TrainerID = &trainerID
	return nil
}

func (r *fakeUserRepo) GetStudentsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, ok := r.users[trainerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var students []domain.User
	for _, id := range trainer.StudentIDs {
		if s, ok := r.users[id]; ok {
			students = append(students, *s)
		}
	}
	return students, nil
}

// addUser seeds a user with a fixed ID, bypassing Create.
func (r *fakeUserRepo) addUser(u domain.User) {
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = &u
}

type fakePlanRepo struct {
	plans []domain.Plan
	clk   *clock
}

func newFakePlanRepo(clk *clock) *fakePlanRepo {
	return &fakePlanRepo{clk: clk}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = r.clk.next()
	plan.UpdatedAt = plan.CreatedAt
	r.plans = append(r.plans, *plan)
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			copied := r.plans[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) filter(keep func(*domain.Plan) bool) []domain.Plan {
	var out []domain.Plan
	for i := range r.plans {
		if keep(&r.plans[i]) {
			out = append(out, r.plans[i])
		}
	}
	// newest first, matching the Mongo repo's createdAt sort
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePlanRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.filter(func(p *domain.Plan) bool { return p.TrainerID == trainerID }), nil
}

func (r *fakePlanRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	return r.filter(func(p *domain.Plan) bool { return p.StudentID == studentID }), nil
}

func (r *fakePlanRepo) GetActiveByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	return r.filter(func(p *domain.Plan) bool { return p.StudentID == studentID && p.IsActive }), nil
}

func (r *fakePlanRepo) GetByStudentAndTrainerID(ctx context.Context, studentID, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.filter(func(p *domain.Plan) bool { return p.StudentID == studentID && p.TrainerID == trainerID }), nil
}

func (r *fakePlanRepo) SetActive(ctx context.Context, planID primitive.ObjectID, active bool) error {
	for i := range r.plans {
		if r.plans[i].ID == planID {
			r.plans[i].IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeDayRepo struct {
	days            []domain.ScheduledDay
	clk             *clock
	creates         int
	failCreateAfter int // fail when creates exceeds this; 0 disables
}

func newFakeDayRepo(clk *clock) *fakeDayRepo {
	return &fakeDayRepo{clk: clk}
}

func (r *fakeDayRepo) Create(ctx context.Context, day *domain.ScheduledDay) (primitive.ObjectID, error) {
	r.creates++
	if r.failCreateAfter > 0 && r.creates > r.failCreateAfter {
		return primitive.NilObjectID, errFakeWrite
	}
	day.ID = primitive.NewObjectID()
	day.CreatedAt = r.clk.next()
	day.UpdatedAt = day.CreatedAt
	r.days = append(r.days, *day)
	return day.ID, nil
}

func (r *fakeDayRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledDay, error) {
	for i := range r.days {
		if r.days[i].ID == id {
			copied := r.days[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDayRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledDay, error) {
	var out []domain.ScheduledDay
	for i := range r.days {
		if r.days[i].PlanID == planID {
			out = append(out, r.days[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakePrescriptionRepo struct {
	prescriptions   []domain.ExercisePrescription
	clk             *clock
	creates         int
	failCreateAfter int
}

func newFakePrescriptionRepo(clk *clock) *fakePrescriptionRepo {
	return &fakePrescriptionRepo{clk: clk}
}

func (r *fakePrescriptionRepo) Create(ctx context.Context, p *domain.ExercisePrescription) (primitive.ObjectID, error) {
	r.creates++
	if r.failCreateAfter > 0 && r.creates > r.failCreateAfter {
		return primitive.NilObjectID, errFakeWrite
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.clk.next()
	p.UpdatedAt = p.CreatedAt
	r.prescriptions = append(r.prescriptions, *p)
	return p.ID, nil
}

func (r *fakePrescriptionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExercisePrescription, error) {
	for i := range r.prescriptions {
		if r.prescriptions[i].ID == id {
			copied := r.prescriptions[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePrescriptionRepo) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.ExercisePrescription, error) {
	var out []domain.ExercisePrescription
	for i := range r.prescriptions {
		if r.prescriptions[i].DayID == dayID {
			out = append(out, r.prescriptions[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type fakeSessionLogRepo struct {
	logs []domain.SessionLog
	clk  *clock
}

func newFakeSessionLogRepo(clk *clock) *fakeSessionLogRepo {
	return &fakeSessionLogRepo{clk: clk}
}

func (r *fakeSessionLogRepo) Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error) {
	log.ID = primitive.NewObjectID()
	log.CreatedAt = r.clk.next()
	r.logs = append(r.logs, *log)
	return log.ID, nil
}

func (r *fakeSessionLogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == id {
			copied := r.logs[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionLogRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.SessionLog, error) {
	var out []domain.SessionLog
	for i := range r.logs {
		if r.logs[i].StudentID == studentID {
			out = append(out, r.logs[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionLogRepo) GetByDayAndStudentID(ctx context.Context, dayID, studentID primitive.ObjectID) ([]domain.SessionLog, error) {
	var out []domain.SessionLog
	for i := range r.logs {
		if r.logs[i].DayID == dayID && r.logs[i].StudentID == studentID {
			out = append(out, r.logs[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeExerciseLogRepo struct {
	logs       []domain.ExerciseLog
	clk        *clock
	failCreate bool
}

func newFakeExerciseLogRepo(clk *clock) *fakeExerciseLogRepo {
	return &fakeExerciseLogRepo{clk: clk}
}

func (r *fakeExerciseLogRepo) CreateMany(ctx context.Context, logs []domain.ExerciseLog) ([]primitive.ObjectID, error) {
	if r.failCreate {
		return nil, errFakeWrite
	}
	ids := make([]primitive.ObjectID, 0, len(logs))
	for i := range logs {
		logs[i].ID = primitive.NewObjectID()
		logs[i].CreatedAt = r.clk.next()
		r.logs = append(r.logs, logs[i])
		ids = append(ids, logs[i].ID)
	}
	return ids, nil
}

func (r *fakeExerciseLogRepo) GetBySessionLogID(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	var out []domain.ExerciseLog
	for i := range r.logs {
		if r.logs[i].SessionLogID == sessionLogID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

type fakeUploadRepo struct {
	uploads []domain.Upload
	clk     *clock
}

func newFakeUploadRepo(clk *clock) *fakeUploadRepo {
	return &fakeUploadRepo{clk: clk}
}

func (r *fakeUploadRepo) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = r.clk.next()
	r.uploads = append(r.uploads, *upload)
	return upload.ID, nil
}

func (r *fakeUploadRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	for i := range r.uploads {
		if r.uploads[i].ID == id {
			copied := r.uploads[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUploadRepo) GetBySessionLogID(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.Upload, error) {
	var out []domain.Upload
	for i := range r.uploads {
		if r.uploads[i].SessionLogID == sessionLogID {
			out = append(out, r.uploads[i])
		}
	}
	return out, nil
}

// fakeStorage returns deterministic URLs derived from the object key.
type fakeStorage struct {
	failPresign bool
}

func (s *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	if s.failPresign {
		return "", errors.New("presign failed")
	}
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.failPresign {
		return "", errors.New("presign failed")
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}
