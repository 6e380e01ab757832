package controllers

import (
	"net/http"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	Scheduler *services.ReservationScheduler
}

func NewReservationController(scheduler *services.ReservationScheduler) *ReservationController {
	return &ReservationController{Scheduler: scheduler}
}

// CreateReservation -> POST /reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	id, err := rc.Scheduler.Book(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, MsgTableMissing)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"reservationId": id})
}

// GetAllReservations -> GET /reservations
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	reservations, err := rc.Scheduler.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"reservations": reservations})
}
