package controllers

import (
	"net/http"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/events"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type EventsController struct {
	Hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewEventsController accepts websocket upgrades from allowedOrigin, or from
// any origin when it is "*" or empty.
func NewEventsController(hub *events.Hub, allowedOrigin string) *EventsController {
	return &EventsController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Stream -> GET /ws/events
func (ec *EventsController) Stream(c *gin.Context) {
	ws, err := ec.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	ec.Hub.Register(ws, c.GetString("email"))

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	ec.Hub.Unregister(ws)
}
