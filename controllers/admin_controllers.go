package controllers

import (
	"net/http"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/events"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Registry  *services.TableRegistry
	Scheduler *services.ReservationScheduler
	Hub       *events.Hub
}

func NewAdminController(registry *services.TableRegistry, scheduler *services.ReservationScheduler, hub *events.Hub) *AdminController {
	return &AdminController{Registry: registry, Scheduler: scheduler, Hub: hub}
}

// GetStats -> GET /admin/stats
func (ac *AdminController) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	tables, err := ac.Registry.List(ctx)
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}
	reservations, err := ac.Scheduler.ListAll(ctx)
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}

	stats := gin.H{
		"tables":       len(tables),
		"reservations": len(reservations),
		"strategy":     ac.Scheduler.Strategy(),
		"booking":      ac.Scheduler.Stats(),
	}
	if ac.Hub != nil {
		stats["listeners"] = ac.Hub.Clients()
	}
	utils.RespondJSON(c, http.StatusOK, stats)
}
