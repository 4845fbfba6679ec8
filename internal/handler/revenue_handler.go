package handler

import (
	"net/http"
	"strconv"

	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RevenueHandler struct {
	billingService *service.BillingService
}

func NewRevenueHandler(billingService *service.BillingService) *RevenueHandler {
	return &RevenueHandler{
		billingService: billingService,
	}
}

// GetRevenue lists revenue entries with a total, optionally filtered by
// doctor and date range (admin only)
func (h *RevenueHandler) GetRevenue(c *gin.Context) {
	var doctorID *uint
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid doctor_id")
			return
		}
		parsed := uint(id)
		doctorID = &parsed
	}

	report, err := h.billingService.ListRevenue(doctorID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}
