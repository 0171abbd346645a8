package controller

import (
	"errors"

	"suggestion_board_backend/internal/service"
	"suggestion_board_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VoteController struct {
	VoteService *service.VoteService
}

func NewVoteController(voteService *service.VoteService) *VoteController {
	return &VoteController{VoteService: voteService}
}

// @Summary List active votes for a suggestion
// @Tags votes
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id}/votes [get]
func (c *VoteController) ListVotes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	votes, err := c.VoteService.ListVotes(ctx.Request.Context(), []int64{id}, "")
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, votes)
}

type castVoteRequest struct {
	Weight int `json:"weight"`
}

// @Summary Cast a vote on a suggestion
// @Tags votes
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param vote body castVoteRequest false "Vote weight, defaults to 1"
// @Success 201 {object} util.Response
// @Router /api/suggestions/{id}/votes [post]
func (c *VoteController) CastVote(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req castVoteRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	vote, err := c.VoteService.CastVote(ctx.Request.Context(), user.User(), id, req.Weight)
	switch {
	case errors.Is(err, util.ErrSuggestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuotaExhausted):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Created(ctx, vote)
	}
}

// @Summary Withdraw a vote
// @Tags votes
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Vote ID"
// @Success 200 {object} util.Response
// @Router /api/votes/{id} [delete]
func (c *VoteController) WithdrawVote(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	err := c.VoteService.WithdrawVote(ctx.Request.Context(), user.User(), id)
	switch {
	case errors.Is(err, util.ErrVoteNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}

// @Summary Report the caller's remaining vote quota
// @Tags votes
// @Security ApiKeyAuth
// @Produce json
// @Param category query string false "Category scope when quota partitions per category"
// @Success 200 {object} util.Response
// @Router /api/votes/quota [get]
func (c *VoteController) Quota(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.VoteService.QuotaFor(ctx.Request.Context(), user.User(), ctx.Query("category"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}
