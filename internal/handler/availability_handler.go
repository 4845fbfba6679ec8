package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinic-ops-backend/internal/scheduling"
	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityService *service.AvailabilityService
	location            *time.Location
}

func NewAvailabilityHandler(availabilityService *service.AvailabilityService, location *time.Location) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
		location:            location,
	}
}

func (h *AvailabilityHandler) parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	date, err := time.ParseInLocation(scheduling.DateFormat, raw, h.location)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// GetDayAvailability returns bookable slots for one doctor and date
func (h *AvailabilityHandler) GetDayAvailability(c *gin.Context) {
	doctorID, err := strconv.ParseUint(c.Query("doctor_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid doctor_id")
		return
	}

	date, ok := h.parseDateQuery(c, "date")
	if !ok {
		return
	}

	day, err := h.availabilityService.GetDoctorAvailability(c.Request.Context(), uint(doctorID), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, day)
}

// GetWeekAvailability returns seven days of availability per doctor
func (h *AvailabilityHandler) GetWeekAvailability(c *gin.Context) {
	weekStart, ok := h.parseDateQuery(c, "week_start")
	if !ok {
		return
	}

	rawIDs := strings.Split(c.Query("doctor_ids"), ",")
	doctorIDs := make([]uint, 0, len(rawIDs))
	for _, raw := range rawIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid doctor_ids")
			return
		}
		doctorIDs = append(doctorIDs, uint(id))
	}
	if len(doctorIDs) == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "doctor_ids is required")
		return
	}

	week, err := h.availabilityService.GetWeekAvailability(c.Request.Context(), doctorIDs, weekStart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"week_start":   weekStart.Format(scheduling.DateFormat),
		"availability": week,
	})
}
