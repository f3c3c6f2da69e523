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

type TrainerHandler struct {
	trainerService service.TrainerService
	planService    service.PlanService
}

func NewTrainerHandler(
	trainerService service.TrainerService,
	planService service.PlanService,
) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		planService:    planService,
	}
}

// --- DTOs for Student Management ---

type AddStudentRequest struct {
	StudentEmail string `json:"studentEmail" binding:"required,email"`
}

// --- DTOs for Plan Authoring ---

// CreatePlanRequest is the full plan payload: header plus nested days,
// each with its ordered exercise prescriptions.
type CreatePlanRequest struct {
	Name            string                `json:"name" binding:"required"`
	Goal            string                `json:"goal"`
	StartDate       time.Time             `json:"startDate" binding:"required"`
	EndDate         time.Time             `json:"endDate" binding:"required"`
	SessionsPerWeek int                   `json:"sessionsPerWeek"`
	Days            []ScheduledDayRequest `json:"days" binding:"dive"`
}

type ScheduledDayRequest struct {
	Date      time.Time             `json:"date" binding:"required"`
	Name      string                `json:"name"`
	Notes     string                `json:"notes"`
	Exercises []PrescriptionRequest `json:"exercises" binding:"dive"`
}

type PrescriptionRequest struct {
	Name          string `json:"name" binding:"required"`
	Sets          int    `json:"sets" binding:"required,min=1"`
	Reps          string `json:"reps"`
	RestSeconds   int    `json:"restSeconds" binding:"min=0"`
	SuggestedLoad string `json:"suggestedLoad"`
	Notes         string `json:"notes"`
}

// PlanResponse is the plan header DTO with the derived duration.
type PlanResponse struct {
	ID              string    `json:"id"`
	TrainerID       string    `json:"trainerId"`
	StudentID       string    `json:"studentId"`
	Name            string    `json:"name"`
	Goal            string    `json:"goal,omitempty"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	SessionsPerWeek int       `json:"sessionsPerWeek,omitempty"`
	IsActive        bool      `json:"isActive"`
	DurationWeeks   int       `json:"durationWeeks"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ScheduledDayResponse struct {
	ID            string                 `json:"id"`
	PlanID        string                 `json:"planId"`
	Date          time.Time              `json:"date"`
	DayOfWeek     string                 `json:"dayOfWeek"`
	Name          string                 `json:"name"`
	Notes         string                 `json:"notes,omitempty"`
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
}

type PrescriptionResponse struct {
	ID            string `json:"id"`
	DayID         string `json:"dayId"`
	Position      int    `json:"position"`
	Name          string `json:"name"`
	Sets          int    `json:"sets"`
	Reps          string `json:"reps,omitempty"`
	RestSeconds   int    `json:"restSeconds,omitempty"`
	SuggestedLoad string `json:"suggestedLoad,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type PlanDetailResponse struct {
	PlanResponse
	Days []ScheduledDayResponse `json:"days"`
}

// --- Handler Methods for Student Management ---

// AddStudentByEmail associates an existing student user with the
// authenticated trainer.
func (h *TrainerHandler) AddStudentByEmail(c *gin.Context) {
	var req AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := actorObjectID(c)
	if !ok {
		return
	}

	student, err := h.trainerService.AddStudentByEmail(c.Request.Context(), trainerID, req.StudentEmail)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrStudentNotRole) || errors.Is(err, service.ErrStudentAlreadyAssigned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add student.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(student))
}

// GetManagedStudents retrieves the trainer's current roster.
func (h *TrainerHandler) GetManagedStudents(c *gin.Context) {
	trainerID, ok := actorObjectID(c)
	if !ok {
		return
	}

	students, err := h.trainerService.GetManagedStudents(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed students.")
		return
	}
	if students == nil {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(students))
}

// --- Handler Methods for Plan Authoring ---

// CreatePlan accepts the full plan payload for one student and persists
// it. On success responds 201 with the commit descriptor. If persistence
// failed partway the commit descriptor still reports what was written,
// with status 500.
func (h *TrainerHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := actorObjectID(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	input := service.PlanInput{
		Name:            req.Name,
		Goal:            req.Goal,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		SessionsPerWeek: req.SessionsPerWeek,
		Days:            make([]service.DayInput, len(req.Days)),
	}
	for i, d := range req.Days {
		day := service.DayInput{
			Date:      d.Date,
			Name:      d.Name,
			Notes:     d.Notes,
			Exercises: make([]service.PrescriptionInput, len(d.Exercises)),
		}
		for j, e := range d.Exercises {
			day.Exercises[j] = service.PrescriptionInput{
				Name:          e.Name,
				Sets:          e.Sets,
				Reps:          e.Reps,
				RestSeconds:   e.RestSeconds,
				SuggestedLoad: e.SuggestedLoad,
				Notes:         e.Notes,
			}
		}
		input.Days[i] = day
	}

	commit, err := h.planService.CreatePlan(c.Request.Context(), trainerID, studentID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStudentNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPlanNameRequired),
			errors.Is(err, service.ErrInvalidDateRange),
			errors.Is(err, service.ErrInvalidSets),
			errors.Is(err, service.ErrExerciseNameless):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			if commit != nil {
				// Partial write: report what committed so the trainer can repair
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":  "plan creation failed after partial write",
					"commit": commit,
				})
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to create plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, commit)
}

// GetPlansForStudent lists the plans the trainer has authored for one student.
func (h *TrainerHandler) GetPlansForStudent(c *gin.Context) {
	trainerID, ok := actorObjectID(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	plans, err := h.planService.GetStudentPlansForTrainer(c.Request.Context(), trainerID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotManaged) {
			abortWithError(c, http.StatusForbidden, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}

	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetMyPlans lists every plan the trainer has authored.
func (h *TrainerHandler) GetMyPlans(c *gin.Context) {
	trainerID, ok := actorObjectID(c)
	if !ok {
		return
	}

	plans, err := h.planService.GetPlansForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}

	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetPlanDetail returns a plan with its full day-by-day schedule.
func (h *TrainerHandler) GetPlanDetail(c *gin.Context) {
	actorID, ok := actorObjectID(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	detail, err := h.planService.GetPlanDetail(c.Request.Context(), actorID, planID)
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

// --- DTO Mappers ---

func MapPlanToResponse(plan *domain.Plan, durationWeeks int) PlanResponse {
	return PlanResponse{
		ID:              plan.ID.Hex(),
		TrainerID:       plan.TrainerID.Hex(),
		StudentID:       plan.StudentID.Hex(),
		Name:            plan.Name,
		Goal:            plan.Goal,
		StartDate:       plan.StartDate,
		EndDate:         plan.EndDate,
		SessionsPerWeek: plan.SessionsPerWeek,
		IsActive:        plan.IsActive,
		DurationWeeks:   durationWeeks,
		CreatedAt:       plan.CreatedAt,
	}
}

func MapPlansToResponse(plans []domain.Plan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapPlanToResponse(&plans[i], schedule.DurationWeeks(plans[i].StartDate, plans[i].EndDate))
	}
	return responses
}

func MapPrescriptionToResponse(p *domain.ExercisePrescription) PrescriptionResponse {
	return PrescriptionResponse{
		ID:            p.ID.Hex(),
		DayID:         p.DayID.Hex(),
		Position:      p.Position,
		Name:          p.Name,
		Sets:          p.Sets,
		Reps:          p.Reps,
		RestSeconds:   p.RestSeconds,
		SuggestedLoad: p.SuggestedLoad,
		Notes:         p.Notes,
	}
}

func MapDayDetailToResponse(d *service.DayDetail) ScheduledDayResponse {
	resp := ScheduledDayResponse{
		ID:            d.ID.Hex(),
		PlanID:        d.PlanID.Hex(),
		Date:          d.Date,
		DayOfWeek:     d.DayOfWeek,
		Name:          d.Name,
		Notes:         d.Notes,
		Prescriptions: make([]PrescriptionResponse, len(d.Prescriptions)),
	}
	for i := range d.Prescriptions {
		resp.Prescriptions[i] = MapPrescriptionToResponse(&d.Prescriptions[i])
	}
	return resp
}

func MapPlanDetailToResponse(detail *service.PlanDetail) PlanDetailResponse {
	resp := PlanDetailResponse{
		PlanResponse: MapPlanToResponse(&detail.Plan, detail.DurationWeeks),
		Days:         make([]ScheduledDayResponse, len(detail.Days)),
	}
	for i := range detail.Days {
		resp.Days[i] = MapDayDetailToResponse(&detail.Days[i])
	}
	return resp
}

// actorObjectID extracts the authenticated user's ObjectID from the
// request context, aborting the request on failure.
func actorObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
