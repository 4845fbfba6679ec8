package handler

import (
	"net/http"
	"strconv"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	doctorService *service.DoctorService
}

func NewDoctorHandler(doctorService *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{
		doctorService: doctorService,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("userID")
	id, _ := userID.(uint)
	return id
}

// GetAllDoctors lists doctors; admins may include deactivated ones
func (h *DoctorHandler) GetAllDoctors(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	role, _ := c.Get("role")
	if role != "admin" {
		includeInactive = false
	}

	doctors, err := h.doctorService.GetAllDoctors(includeInactive)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch doctors")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor retrieves a doctor by ID
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doctor, err := h.doctorService.GetDoctorByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, doctor)
}

// CreateDoctor creates a new doctor (admin only)
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := c.ShouldBindJSON(&doctor); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.doctorService.CreateDoctor(&doctor, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, doctor)
}

// UpdateDoctor patches doctor fields (admin only)
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	delete(updates, "id")

	if err := h.doctorService.UpdateDoctor(id, updates, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Doctor updated successfully")
}

// DeactivateDoctor disables booking against a doctor (admin only)
func (h *DoctorHandler) DeactivateDoctor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.doctorService.DeactivateDoctor(id, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Doctor deactivated successfully")
}

// ListTemplates lists a doctor's working-hour templates
func (h *DoctorHandler) ListTemplates(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	templates, err := h.doctorService.ListTemplates(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"templates": templates,
		"count":     len(templates),
	})
}

type templateRequest struct {
	Weekday     *int     `json:"weekday"`
	Date        *string  `json:"date"`
	StartTime   string   `json:"start_time" binding:"required"`
	EndTime     string   `json:"end_time" binding:"required"`
	Status      string   `json:"status"`
	BillingType string   `json:"billing_type"`
	FeeOverride *float64 `json:"fee_override"`
}

// AddTemplate creates a working-hour template for a doctor (admin only)
func (h *DoctorHandler) AddTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	template := models.ScheduleTemplate{
		DoctorID:    id,
		Weekday:     req.Weekday,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		BillingType: req.BillingType,
		FeeOverride: req.FeeOverride,
	}

	if err := h.doctorService.AddTemplate(&template, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, template)
}

// DeleteTemplate removes a working-hour template (admin only)
func (h *DoctorHandler) DeleteTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.doctorService.DeleteTemplate(id, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Template deleted successfully")
}
