package controller

import (
	"errors"

	"suggestion_board_backend/internal/service"
	"suggestion_board_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	CommentService *service.CommentService
}

func NewCommentController(commentService *service.CommentService) *CommentController {
	return &CommentController{CommentService: commentService}
}

// @Summary List the comments under a suggestion
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id}/comments [get]
func (c *CommentController) ListComments(ctx *gin.Context) {
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

	comments, err := c.CommentService.ListComments(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary Comment on a suggestion
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param comment body addCommentRequest true "Comment text"
// @Success 201 {object} util.Response
// @Router /api/suggestions/{id}/comments [post]
func (c *CommentController) AddComment(ctx *gin.Context) {
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

	var req addCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.CommentService.AddComment(ctx.Request.Context(), user.User(), id, req.Text)
	switch {
	case errors.Is(err, util.ErrSuggestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrInvalidSuggestionID), errors.Is(err, util.ErrEmptyComment):
		util.BadRequest(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Created(ctx, comment)
	}
}

// @Summary Delete a comment
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id}/comments/{commentId} [delete]
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	suggestionID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}
	commentID, ok := util.ParseID(ctx.Param("commentId"))
	if !ok {
		util.BadRequest(ctx, "invalid comment id")
		return
	}

	err := c.CommentService.DeleteComment(ctx.Request.Context(), user.User(), commentID, suggestionID)
	switch {
	case errors.Is(err, util.ErrCommentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}
