// Package api wires HTTP routes onto the room and voting services.
// Gameplay itself runs over the websocket endpoint; HTTP only serves
// health, snapshots and results.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planning_poker/internal/api/handlers"
	"planning_poker/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	roomHandler := handlers.NewRoomHandler(services.Room, services.Voting)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Room, services.Voting)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		rooms := api.Group("/rooms")
		{
			rooms.GET("/:code", roomHandler.GetRoom)
			rooms.GET("/:code/results", roomHandler.GetResults)
		}
	}

	r.GET("/ws", wsHandler.HandleWebSocket)
}
