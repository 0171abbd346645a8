package controller

import (
	"suggestion_board_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

// @Summary Return the identity of the current session
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, user.User())
}
