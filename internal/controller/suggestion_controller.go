package controller

import (
	"errors"
	"strconv"
	"strings"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/internal/service"
	"suggestion_board_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SuggestionController struct {
	SuggestionService *service.SuggestionService
}

func NewSuggestionController(suggestionService *service.SuggestionService) *SuggestionController {
	return &SuggestionController{SuggestionService: suggestionService}
}

// @Summary List suggestions with filtering, search and pagination
// @Tags suggestions
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "Comma-separated status titles"
// @Param category query string false "Category title"
// @Param subcategory query string false "Subcategory title"
// @Param q query string false "Free-text search over title and details"
// @Param ids query string false "Comma-separated suggestion IDs"
// @Param mine query bool false "Only the caller's suggestions"
// @Param orderBy query string false "created (default) or votes"
// @Param top query int false "Page size"
// @Param pageToken query string false "Opaque continuation token"
// @Success 200 {object} util.Response
// @Router /api/suggestions [get]
func (c *SuggestionController) ListSuggestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	filter := repository.SuggestionFilter{
		Category:    ctx.Query("category"),
		Subcategory: ctx.Query("subcategory"),
		OrderBy:     ctx.Query("orderBy"),
	}
	if raw := ctx.Query("status"); raw != "" {
		filter.Statuses = splitNonEmpty(raw)
	}
	if q := ctx.Query("q"); q != "" {
		filter.TitleQuery = q
		filter.DetailsQuery = q
	}
	if raw := ctx.Query("ids"); raw != "" {
		for _, part := range splitNonEmpty(raw) {
			id, ok := util.ParseID(part)
			if !ok {
				util.BadRequest(ctx, "invalid id in ids")
				return
			}
			filter.IDs = append(filter.IDs, id)
		}
	}
	if ctx.Query("mine") == "true" {
		filter.CreatedBy = user.Login
	}

	page := repository.Page{Token: ctx.Query("pageToken")}
	if raw := ctx.Query("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top < 1 {
			util.BadRequest(ctx, "invalid top")
			return
		}
		page.Top = top
	}

	result, err := c.SuggestionService.ListSuggestions(ctx.Request.Context(), filter, page, user.User())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:          result.Items,
		Total:         result.Total,
		NextPageToken: result.NextPageToken,
	})
}

// @Summary Get one suggestion with its aggregates
// @Tags suggestions
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id} [get]
func (c *SuggestionController) GetSuggestion(ctx *gin.Context) {
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

	view, err := c.SuggestionService.GetSuggestion(ctx.Request.Context(), id, user.User())
	if errors.Is(err, util.ErrSuggestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

type createSuggestionRequest struct {
	Title       string `json:"title" binding:"required"`
	Details     string `json:"details"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// @Summary Submit a new suggestion
// @Tags suggestions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param suggestion body createSuggestionRequest true "Suggestion"
// @Success 201 {object} util.Response
// @Router /api/suggestions [post]
func (c *SuggestionController) CreateSuggestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createSuggestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.SuggestionService.CreateSuggestion(ctx.Request.Context(), user.User(), &model.Suggestion{
		Title:       req.Title,
		Details:     req.Details,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	if errors.Is(err, util.ErrEmptyTitle) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// @Summary Edit a suggestion
// @Tags suggestions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param suggestion body createSuggestionRequest true "Updated fields"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id} [put]
func (c *SuggestionController) UpdateSuggestion(ctx *gin.Context) {
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

	var req createSuggestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.SuggestionService.UpdateSuggestion(ctx.Request.Context(), user.User(), id, &model.Suggestion{
		Title:       req.Title,
		Details:     req.Details,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	switch {
	case errors.Is(err, util.ErrSuggestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrEmptyTitle):
		util.BadRequest(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Change a suggestion's status
// @Tags suggestions
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Suggestion ID"
// @Param status body changeStatusRequest true "New status"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id}/status [patch]
func (c *SuggestionController) ChangeStatus(ctx *gin.Context) {
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

	var req changeStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.SuggestionService.ChangeStatus(ctx.Request.Context(), user.User(), id, req.Status)
	switch {
	case errors.Is(err, util.ErrSuggestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrUnknownStatus):
		util.BadRequest(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}

// @Summary Delete a suggestion and its votes and comments
// @Tags suggestions
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} util.Response
// @Router /api/suggestions/{id} [delete]
func (c *SuggestionController) DeleteSuggestion(ctx *gin.Context) {
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

	err := c.SuggestionService.DeleteSuggestion(ctx.Request.Context(), user.User(), id)
	switch {
	case errors.Is(err, util.ErrSuggestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}

func splitNonEmpty(raw string) []string {
	parts := strings.Split(raw, ",")
	kept := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return kept
}
