package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/repository"
	"trainup/training-app/internal/schedule"
	"trainup/training-app/internal/storage"
)

// --- Error Definitions ---
var (
	ErrDayNotFound         = errors.New("scheduled day not found")
	ErrDayAccessDenied     = errors.New("scheduled day does not belong to this student")
	ErrSessionLogNotFound  = errors.New("session log not found")
	ErrSessionAccessDenied = errors.New("access denied to this session log")
	ErrAttachmentNotFound  = errors.New("attachment not found for this session")
	ErrInvalidContentType  = errors.New("attachment content type must be video or image")
	ErrUploadURLError      = errors.New("failed to generate upload URL")
	ErrDownloadURLError    = errors.New("failed to generate download URL")
	ErrUploadConfirmFailed = errors.New("failed to confirm attachment upload")
)

// TodaySession is the resolved "what should be trained today" answer:
// the authoritative plan, the matching day, and its ordered prescriptions.
type TodaySession struct {
	Plan          domain.Plan                   `json:"plan"`
	Day           domain.ScheduledDay           `json:"day"`
	Prescriptions []domain.ExercisePrescription `json:"prescriptions"`
}

// PerformedOverride carries a student's edits for one prescription when
// completing a session. Empty fields mean "use the prescribed value".
type PerformedOverride struct {
	SetsCompleted *int   `json:"setsCompleted,omitempty"`
	Reps          string `json:"reps,omitempty"` // free-form, best-effort parsed
	Load          string `json:"load,omitempty"`
}

// SessionCommit describes which parts of a session completion committed:
// the session log always precedes the exercise-log batch, so on a partial
// failure ExerciseLogIDs is empty while SessionLogID is set.
type SessionCommit struct {
	SessionLogID   primitive.ObjectID   `json:"sessionLogId"`
	ExerciseLogIDs []primitive.ObjectID `json:"exerciseLogIds"`
}

// SessionDetail is one logged session with its as-performed exercise logs.
type SessionDetail struct {
	domain.SessionLog
	ExerciseLogs []domain.ExerciseLog `json:"exerciseLogs"`
}

// UploadURLResponse returns a presigned PUT URL plus the object key the
// student must report back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---

type StudentService interface {
	// Scheduling
	ResolveTodaySession(ctx context.Context, studentID primitive.ObjectID, today time.Time) (*TodaySession, error)

	// Logging
	CompleteSession(ctx context.Context, studentID, dayID primitive.ObjectID, today time.Time, overrides map[string]PerformedOverride) (*SessionCommit, error)
	GetSessionHistory(ctx context.Context, studentID primitive.ObjectID) ([]domain.SessionLog, error)
	GetSessionDetail(ctx context.Context, studentID, sessionLogID primitive.ObjectID) (*SessionDetail, error)

	// Session attachments
	RequestAttachmentUploadURL(ctx context.Context, studentID, sessionLogID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmAttachment(ctx context.Context, studentID, sessionLogID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.Upload, error)
	GetAttachmentDownloadURL(ctx context.Context, actorID, sessionLogID, uploadID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type studentService struct {
	planRepo         repository.PlanRepository
	dayRepo          repository.ScheduledDayRepository
	prescriptionRepo repository.PrescriptionRepository
	sessionLogRepo   repository.SessionLogRepository
	exerciseLogRepo  repository.ExerciseLogRepository
	uploadRepo       repository.UploadRepository
	fileStorage      storage.FileStorage
}

// NewStudentService creates a new instance of studentService.
func NewStudentService(
	planRepo repository.PlanRepository,
	dayRepo repository.ScheduledDayRepository,
	prescriptionRepo repository.PrescriptionRepository,
	sessionLogRepo repository.SessionLogRepository,
	exerciseLogRepo repository.ExerciseLogRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
) StudentService {
	return &studentService{
		planRepo:         planRepo,
		dayRepo:          dayRepo,
		prescriptionRepo: prescriptionRepo,
		sessionLogRepo:   sessionLogRepo,
		exerciseLogRepo:  exerciseLogRepo,
		uploadRepo:       uploadRepo,
		fileStorage:      fileStorage,
	}
}

// === Scheduling ===

// ResolveTodaySession finds the session due on the given date, if any.
// Among the student's active plans the most recently created one is
// authoritative; only its days are searched. No match is a rest day and
// returns (nil, nil), not an error. The date is always caller-injected
// so tests never depend on wall-clock time.
func (s *studentService) ResolveTodaySession(ctx context.Context, studentID primitive.ObjectID, today time.Time) (*TodaySession, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}

	plans, err := s.planRepo.GetActiveByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil // no plan assigned
	}
	plan := plans[0] // newest first

	days, err := s.dayRepo.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for _, day := range days {
		if !schedule.SameDate(day.Date, today) {
			continue
		}
		prescriptions, err := s.prescriptionRepo.GetByDayID(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		return &TodaySession{Plan: plan, Day: day, Prescriptions: prescriptions}, nil
	}
	return nil, nil // rest day
}

// === Logging ===

// CompleteSession records that the student executed a scheduled day:
// one SessionLog plus one ExerciseLog per prescription of the day,
// untouched prescriptions included. Overrides are keyed by prescription
// ID (hex); missing values fall back to the prescribed defaults.
//
// Calls are not idempotent: completing the same day again appends a new
// historical record set. The session log is written before the exercise
// logs and there is no rollback; on an exercise-log failure the partial
// SessionCommit is returned alongside the error.
func (s *studentService) CompleteSession(ctx context.Context, studentID, dayID primitive.ObjectID, today time.Time, overrides map[string]PerformedOverride) (*SessionCommit, error) {
	if studentID == primitive.NilObjectID || dayID == primitive.NilObjectID {
		return nil, errors.New("student ID and day ID are required")
	}

	// 1. Fetch the day and verify it belongs to one of the student's plans
	day, err := s.dayRepo.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}
	plan, err := s.planRepo.GetByID(ctx, day.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.StudentID != studentID {
		return nil, ErrDayAccessDenied
	}

	// 2. Load the prescriptions in position order
	prescriptions, err := s.prescriptionRepo.GetByDayID(ctx, dayID)
	if err != nil {
		return nil, err
	}

	// 3. Persist the session log
	sessionLog := &domain.SessionLog{
		DayID:      dayID,
		StudentID:  studentID,
		LoggedDate: schedule.NormalizeDate(today),
		Completed:  true,
	}
	sessionLogID, err := s.sessionLogRepo.Create(ctx, sessionLog)
	if err != nil {
		return nil, err
	}
	commit := &SessionCommit{SessionLogID: sessionLogID, ExerciseLogIDs: []primitive.ObjectID{}}

	// 4. Build one exercise log per prescription and persist the batch
	logs := make([]domain.ExerciseLog, 0, len(prescriptions))
	for _, p := range prescriptions {
		logs = append(logs, buildExerciseLog(sessionLogID, studentID, p, overrides[p.ID.Hex()]))
	}
	logIDs, err := s.exerciseLogRepo.CreateMany(ctx, logs)
	if err != nil {
		// Session log exists without its exercise logs; caller repairs.
		return commit, err
	}
	commit.ExerciseLogIDs = logIDs
	return commit, nil
}

// buildExerciseLog applies the default rules of a session completion:
// setsCompleted falls back to the prescribed sets, repsPerformed to the
// best-effort parse of the prescribed reps, loadsUsed to a single zero
// entry. Reps and loads always come out as parallel one-element slices
// so a record survives even for fields the student never touched.
func buildExerciseLog(sessionLogID, studentID primitive.ObjectID, p domain.ExercisePrescription, ov PerformedOverride) domain.ExerciseLog {
	sets := p.Sets
	if ov.SetsCompleted != nil {
		sets = *ov.SetsCompleted
	}

	repsSource := p.Reps
	if ov.Reps != "" {
		repsSource = ov.Reps
	}
	reps, _ := parseLeadingInt(repsSource)

	load := 0.0
	if ov.Load != "" {
		load, _ = parseLeadingFloat(ov.Load)
	}

	return domain.ExerciseLog{
		SessionLogID:   sessionLogID,
		PrescriptionID: p.ID,
		StudentID:      studentID,
		SetsCompleted:  sets,
		RepsPerformed:  []int{reps},
		LoadsUsed:      []float64{load},
		Completed:      true,
	}
}

// GetSessionHistory retrieves the student's session logs, newest first.
func (s *studentService) GetSessionHistory(ctx context.Context, studentID primitive.ObjectID) ([]domain.SessionLog, error) {
	if studentID == primitive.NilObjectID {
		return nil, errors.New("student ID is required")
	}
	return s.sessionLogRepo.GetByStudentID(ctx, studentID)
}

// GetSessionDetail retrieves one logged session with its exercise logs.
func (s *studentService) GetSessionDetail(ctx context.Context, studentID, sessionLogID primitive.ObjectID) (*SessionDetail, error) {
	log, err := s.ownedSessionLog(ctx, studentID, sessionLogID)
	if err != nil {
		return nil, err
	}
	exerciseLogs, err := s.exerciseLogRepo.GetBySessionLogID(ctx, sessionLogID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{SessionLog: *log, ExerciseLogs: exerciseLogs}, nil
}

// === Session attachments ===

// RequestAttachmentUploadURL generates a presigned PUT URL so the student
// can attach a file (e.g. a form-check video) to a logged session.
func (s *studentService) RequestAttachmentUploadURL(ctx context.Context, studentID, sessionLogID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	lowered := strings.ToLower(contentType)
	if !strings.HasPrefix(lowered, "video/") && !strings.HasPrefix(lowered, "image/") {
		return nil, ErrInvalidContentType
	}
	if _, err := s.ownedSessionLog(ctx, studentID, sessionLogID); err != nil {
		return nil, err
	}

	fileExtension := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("sessions", studentID.Hex(), sessionLogID.Hex(),
		fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmAttachment records the metadata after the student has PUT the
// file to the presigned URL.
func (s *studentService) ConfirmAttachment(ctx context.Context, studentID, sessionLogID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.Upload, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}
	log, err := s.ownedSessionLog(ctx, studentID, sessionLogID)
	if err != nil {
		return nil, err
	}

	// Denormalize the trainer for trainer-side listing.
	trainerID := primitive.NilObjectID
	if day, err := s.dayRepo.GetByID(ctx, log.DayID); err == nil {
		if plan, err := s.planRepo.GetByID(ctx, day.PlanID); err == nil {
			trainerID = plan.TrainerID
		}
	}

	upload := &domain.Upload{
		SessionLogID: sessionLogID,
		StudentID:    studentID,
		TrainerID:    trainerID,
		S3ObjectKey:  objectKey,
		FileName:     fileName,
		ContentType:  contentType,
		Size:         fileSize,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		return nil, ErrUploadConfirmFailed
	}
	upload.ID = uploadID
	return upload, nil
}

// GetAttachmentDownloadURL generates a temporary GET URL for a session
// attachment. The owning student and the plan's trainer may both view it.
func (s *studentService) GetAttachmentDownloadURL(ctx context.Context, actorID, sessionLogID, uploadID primitive.ObjectID) (string, error) {
	upload, err := s.uploadRepo.GetByID(ctx, uploadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAttachmentNotFound
		}
		return "", err
	}
	if upload.SessionLogID != sessionLogID {
		return "", ErrAttachmentNotFound
	}
	if upload.StudentID != actorID && upload.TrainerID != actorID {
		return "", ErrSessionAccessDenied
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// ownedSessionLog fetches a session log and checks it belongs to the student.
func (s *studentService) ownedSessionLog(ctx context.Context, studentID, sessionLogID primitive.ObjectID) (*domain.SessionLog, error) {
	log, err := s.sessionLogRepo.GetByID(ctx, sessionLogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionLogNotFound
		}
		return nil, err
	}
	if log.StudentID != studentID {
		return nil, ErrSessionAccessDenied
	}
	return log, nil
}
