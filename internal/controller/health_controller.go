package controller

import (
	"net/http"

	"suggestion_board_backend/internal/util"

	"suggestion_board_backend/pkg/liststore"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Store *liststore.Client
}

func NewHealthController(store *liststore.Client) *HealthController {
	return &HealthController{Store: store}
}

// @Summary Health check, including list store reachability
// @Tags health
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	if err := c.Store.Ping(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "list store unreachable")
		return
	}
	util.Success(ctx, gin.H{"status": "ok"})
}
