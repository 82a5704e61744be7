package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"planning_poker/internal/models"
	"planning_poker/internal/service"
)

// RoomHandler serves read-only room views over plain HTTP: the resync
// snapshot for a client that lost its socket and the exportable
// results document
type RoomHandler struct {
	roomService   *service.RoomService
	votingService *service.VotingService
}

func NewRoomHandler(roomService *service.RoomService, votingService *service.VotingService) *RoomHandler {
	return &RoomHandler{
		roomService:   roomService,
		votingService: votingService,
	}
}

// GetRoom returns the full room-state snapshot
func (h *RoomHandler) GetRoom(c *gin.Context) {
	snapshot, err := h.roomService.Snapshot(c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetResults returns the session results in original question order
func (h *RoomHandler) GetResults(c *gin.Context) {
	results, err := h.votingService.Results(c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
