package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/schedule"
	"trainup/training-app/internal/service"
)

type StudentHandler struct {
	studentService service.StudentService
	planService    service.PlanService
}

func NewStudentHandler(
	studentService service.StudentService,
	planService service.PlanService,
) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		planService:    planService,
	}
}

// --- DTOs ---

// TodaySessionResponse is the resolved session for a date. Rest days and
// "no plan" both come back as restDay=true with no day attached.
type TodaySessionResponse struct {
	RestDay bool                  `json:"restDay"`
	Plan    *PlanResponse         `json:"plan,omitempty"`
	Day     *ScheduledDayResponse `json:"day,omitempty"`
}

// CompleteSessionRequest carries optional per-prescription overrides,
// keyed by prescription ID hex. Reps and load are free-form strings
// ("8-10", "62.5kg"); leading numbers are extracted best-effort.
type CompleteSessionRequest struct {
	Date      time.Time                  `json:"date"`
	Overrides map[string]OverrideRequest `json:"overrides"`
}

type OverrideRequest struct {
	SetsCompleted *int   `json:"setsCompleted,omitempty"`
	Reps          string `json:"reps,omitempty"`
	Load          string `json:"load,omitempty"`
}

type SessionLogResponse struct {
	ID         string    `json:"id"`
	DayID      string    `json:"dayId"`
	LoggedDate time.Time `json:"loggedDate"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ExerciseLogResponse struct {
	ID             string    `json:"id"`
	PrescriptionID string    `json:"prescriptionId"`
	SetsCompleted  int       `json:"setsCompleted"`
	RepsPerformed  []int     `json:"repsPerformed"`
	LoadsUsed      []float64 `json:"loadsUsed"`
	Completed      bool      `json:"completed"`
}

type SessionDetailResponse struct {
	SessionLogResponse
	ExerciseLogs []ExerciseLogResponse `json:"exerciseLogs"`
}

type RequestUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

type UploadResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// --- Handler Methods ---

// GetMyPlans lists the student's plans, newest first.
func (h *StudentHandler) GetMyPlans(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}

	plans, err := h.planService.GetPlansForStudent(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}

	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetPlanDetail returns one of the student's plans with its full schedule.
func (h *StudentHandler) GetPlanDetail(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	detail, err := h.planService.GetPlanDetail(c.Request.Context(), studentID, planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrPlanAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan.")
		}
		return
	}

	c.JSON(http.StatusOK, MapPlanDetailToResponse(detail))
}

// GetTodaySession resolves what the student should train on a given date.
// The date comes from the ?date=YYYY-MM-DD query parameter and defaults
// to the server's current day, so clients in other timezones should
// always pass it explicitly.
func (h *StudentHandler) GetTodaySession(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}

	today := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
			return
		}
		today = parsed
	}

	session, err := h.studentService.ResolveTodaySession(c.Request.Context(), studentID, today)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve today's session.")
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, TodaySessionResponse{RestDay: true})
		return
	}

	planResp := MapPlanToResponse(&session.Plan, schedule.DurationWeeks(session.Plan.StartDate, session.Plan.EndDate))
	dayResp := MapDayDetailToResponse(&service.DayDetail{
		ScheduledDay:  session.Day,
		Prescriptions: session.Prescriptions,
	})
	c.JSON(http.StatusOK, TodaySessionResponse{
		RestDay: false,
		Plan:    &planResp,
		Day:     &dayResp,
	})
}

// CompleteSession logs a finished session for a scheduled day. Responds
// 201 with the commit descriptor; a partial write still reports the
// session log that committed, with status 500.
func (h *StudentHandler) CompleteSession(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}
	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	loggedDate := req.Date
	if loggedDate.IsZero() {
		loggedDate = time.Now().UTC()
	}

	overrides := make(map[string]service.PerformedOverride, len(req.Overrides))
	for id, ov := range req.Overrides {
		overrides[id] = service.PerformedOverride{
			SetsCompleted: ov.SetsCompleted,
			Reps:          ov.Reps,
			Load:          ov.Load,
		}
	}

	commit, err := h.studentService.CompleteSession(c.Request.Context(), studentID, dayID, loggedDate, overrides)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDayNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDayAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			if commit != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":  "session logging failed after partial write",
					"commit": commit,
				})
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to log session.")
		}
		return
	}

	c.JSON(http.StatusCreated, commit)
}

// GetSessionHistory lists the student's logged sessions, newest first.
func (h *StudentHandler) GetSessionHistory(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}

	logs, err := h.studentService.GetSessionHistory(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve session history.")
		return
	}

	responses := make([]SessionLogResponse, len(logs))
	for i := range logs {
		responses[i] = mapSessionLogToResponse(&logs[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetSessionDetail returns one logged session with its exercise logs.
func (h *StudentHandler) GetSessionDetail(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}
	sessionLogID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	detail, err := h.studentService.GetSessionDetail(c.Request.Context(), studentID, sessionLogID)
	if err != nil {
		if errors.Is(err, service.ErrSessionLogNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrSessionAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve session.")
		}
		return
	}

	resp := SessionDetailResponse{
		SessionLogResponse: mapSessionLogToResponse(&detail.SessionLog),
		ExerciseLogs:       make([]ExerciseLogResponse, len(detail.ExerciseLogs)),
	}
	for i, l := range detail.ExerciseLogs {
		resp.ExerciseLogs[i] = ExerciseLogResponse{
			ID:             l.ID.Hex(),
			PrescriptionID: l.PrescriptionID.Hex(),
			SetsCompleted:  l.SetsCompleted,
			RepsPerformed:  l.RepsPerformed,
			LoadsUsed:      l.LoadsUsed,
			Completed:      l.Completed,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RequestAttachmentUpload returns a presigned PUT URL for attaching a
// file to a logged session.
func (h *StudentHandler) RequestAttachmentUpload(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}
	sessionLogID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	var req RequestUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.studentService.RequestAttachmentUploadURL(c.Request.Context(), studentID, sessionLogID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContentType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionLogNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmAttachmentUpload records the attachment metadata after the
// client finished the PUT.
func (h *StudentHandler) ConfirmAttachmentUpload(c *gin.Context) {
	studentID, ok := actorObjectID(c)
	if !ok {
		return
	}
	sessionLogID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.studentService.ConfirmAttachment(c.Request.Context(), studentID, sessionLogID,
		req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionLogNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload.")
		}
		return
	}

	c.JSON(http.StatusCreated, mapUploadToResponse(upload))
}

// GetAttachmentDownloadURL returns a presigned GET URL for a session
// attachment. Available to the owning student and to the plan's trainer.
func (h *StudentHandler) GetAttachmentDownloadURL(c *gin.Context) {
	actorID, ok := actorObjectID(c)
	if !ok {
		return
	}
	sessionLogID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	uploadID, err := primitive.ObjectIDFromHex(c.Param("uploadId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid upload ID format.")
		return
	}

	url, err := h.studentService.GetAttachmentDownloadURL(c.Request.Context(), actorID, sessionLogID, uploadID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// --- DTO Mappers ---

func mapSessionLogToResponse(log *domain.SessionLog) SessionLogResponse {
	return SessionLogResponse{
		ID:         log.ID.Hex(),
		DayID:      log.DayID.Hex(),
		LoggedDate: log.LoggedDate,
		Completed:  log.Completed,
		CreatedAt:  log.CreatedAt,
	}
}

func mapUploadToResponse(upload *domain.Upload) UploadResponse {
	return UploadResponse{
		ID:          upload.ID.Hex(),
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		UploadedAt:  upload.UploadedAt,
	}
}
