package handler

import (
	"net/http"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/service"
	"clinic-ops-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

// GetAllRooms lists all consultation rooms
func (h *RoomHandler) GetAllRooms(c *gin.Context) {
	rooms, err := h.roomService.GetAllRooms()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch rooms")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// CreateRoom creates a consultation room (admin only)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.roomService.CreateRoom(&room, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, room)
}

type assignRequest struct {
	DoctorID uint `json:"doctor_id" binding:"required"`
}

// AssignSpecialist assigns a doctor to a room (admin only)
func (h *RoomHandler) AssignSpecialist(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.roomService.AssignSpecialist(id, req.DoctorID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Specialist assigned successfully")
}

// UnassignSpecialist clears a room's specialist (admin only)
func (h *RoomHandler) UnassignSpecialist(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roomService.UnassignSpecialist(id, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.MessageResponse(c, "Specialist unassigned successfully")
}
