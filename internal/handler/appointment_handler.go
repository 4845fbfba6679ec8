package handler

import (
	"net/http"
	"time"

	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointmentService *service.AppointmentService
}

func NewAppointmentHandler(appointmentService *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

type createAppointmentRequest struct {
	DoctorID    uint      `json:"doctor_id" binding:"required"`
	PatientID   uint      `json:"patient_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	Note        string    `json:"note"`
}

// CreateAppointment books a slot; re-validation happens at commit time
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	appt, err := h.appointmentService.Create(c.Request.Context(), service.CreateAppointmentInput{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
		Note:        req.Note,
	}, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, appt)
}

// GetAppointment returns one appointment with fresh room fields
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, appt)
}

// ListPatientAppointments lists a patient's upcoming appointments
func (h *AppointmentHandler) ListPatientAppointments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appts, err := h.appointmentService.ListForPatient(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"appointments": appts,
		"count":        len(appts),
	})
}

// ConfirmAppointment moves a pending appointment to accepted
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.Confirm(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, appt)
}

type rescheduleRequest struct {
	DoctorID    *uint     `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// RescheduleAppointment moves an appointment to a new slot
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	appt, err := h.appointmentService.Reschedule(c.Request.Context(), id, req.DoctorID, req.ScheduledAt, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, appt)
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelAppointment terminally cancels an appointment
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "A cancellation reason is required")
		return
	}

	appt, err := h.appointmentService.Cancel(c.Request.Context(), id, req.Reason, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, appt)
}

// CompleteAppointment terminally completes an appointment
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.Complete(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, appt)
}
