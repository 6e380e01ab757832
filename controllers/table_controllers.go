package controllers

import (
	"net/http"
	"strconv"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

type TableController struct {
	Registry *services.TableRegistry
}

func NewTableController(registry *services.TableRegistry) *TableController {
	return &TableController{Registry: registry}
}

// CreateTable -> POST /tables
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		ID       int64    `json:"id"`
		Number   int64    `json:"number"`
		Places   int      `json:"places"`
		IsVip    bool     `json:"isVip"`
		MinOrder *float64 `json:"minOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	id, err := tc.Registry.Create(c.Request.Context(), models.Table{
		ID:       req.ID,
		Number:   req.Number,
		Places:   req.Places,
		IsVip:    req.IsVip,
		MinOrder: req.MinOrder,
	})
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"id": id})
}

// GetAllTables -> GET /tables
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Registry.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"tables": tables})
}

// GetTableByID -> GET /tables/:table_id
func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, "Invalid table id")
		return
	}

	table, err := tc.Registry.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, MsgTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}
