package controller

import (
	"context"
	"errors"

	"suggestion_board_backend/internal/model"
	"suggestion_board_backend/internal/service"
	"suggestion_board_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TaxonomyController struct {
	TaxonomyService *service.TaxonomyService
}

func NewTaxonomyController(taxonomyService *service.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{TaxonomyService: taxonomyService}
}

// @Summary List categories
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/taxonomy/categories [get]
func (c *TaxonomyController) GetCategories(ctx *gin.Context) {
	categories, err := c.TaxonomyService.GetCategories(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// @Summary List subcategories, optionally scoped to a category
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Param category query string false "Parent category"
// @Success 200 {object} util.Response
// @Router /api/taxonomy/subcategories [get]
func (c *TaxonomyController) GetSubcategories(ctx *gin.Context) {
	subcategories, err := c.TaxonomyService.GetSubcategories(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subcategories)
}

// @Summary List the ordered status vocabulary
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/taxonomy/statuses [get]
func (c *TaxonomyController) GetStatuses(ctx *gin.Context) {
	statuses, err := c.TaxonomyService.GetStatuses(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, statuses)
}

type addDefinitionRequest struct {
	Title    string `json:"title" binding:"required"`
	Category string `json:"category"`
}

// @Summary Add a category
// @Tags taxonomy
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param definition body addDefinitionRequest true "Category"
// @Success 201 {object} util.Response
// @Router /api/taxonomy/categories [post]
func (c *TaxonomyController) AddCategory(ctx *gin.Context) {
	var req addDefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.TaxonomyService.AddCategory(ctx.Request.Context(), req.Title)
	c.respondDefinition(ctx, created, err)
}

// @Summary Add a subcategory
// @Tags taxonomy
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param definition body addDefinitionRequest true "Subcategory with optional parent"
// @Success 201 {object} util.Response
// @Router /api/taxonomy/subcategories [post]
func (c *TaxonomyController) AddSubcategory(ctx *gin.Context) {
	var req addDefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.TaxonomyService.AddSubcategory(ctx.Request.Context(), req.Title, req.Category)
	c.respondDefinition(ctx, created, err)
}

type addStatusRequest struct {
	Title       string `json:"title" binding:"required"`
	SortOrder   int    `json:"sortOrder"`
	IsCompleted bool   `json:"isCompleted"`
	IsDenied    bool   `json:"isDenied"`
}

// @Summary Add a status definition
// @Tags taxonomy
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param definition body addStatusRequest true "Status"
// @Success 201 {object} util.Response
// @Router /api/taxonomy/statuses [post]
func (c *TaxonomyController) AddStatus(ctx *gin.Context) {
	var req addStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.TaxonomyService.AddStatus(ctx.Request.Context(), model.StatusDefinition{
		Title:       req.Title,
		SortOrder:   req.SortOrder,
		IsCompleted: req.IsCompleted,
		IsDenied:    req.IsDenied,
	})
	c.respondDefinition(ctx, created, err)
}

// @Summary Remove a category
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} util.Response
// @Router /api/taxonomy/categories/{id} [delete]
func (c *TaxonomyController) RemoveCategory(ctx *gin.Context) {
	c.remove(ctx, c.TaxonomyService.RemoveCategory)
}

// @Summary Remove a subcategory
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Subcategory ID"
// @Success 200 {object} util.Response
// @Router /api/taxonomy/subcategories/{id} [delete]
func (c *TaxonomyController) RemoveSubcategory(ctx *gin.Context) {
	c.remove(ctx, c.TaxonomyService.RemoveSubcategory)
}

// @Summary Remove a status definition
// @Tags taxonomy
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Status ID"
// @Success 200 {object} util.Response
// @Router /api/taxonomy/statuses/{id} [delete]
func (c *TaxonomyController) RemoveStatus(ctx *gin.Context) {
	c.remove(ctx, c.TaxonomyService.RemoveStatus)
}

func (c *TaxonomyController) respondDefinition(ctx *gin.Context, created any, err error) {
	switch {
	case errors.Is(err, util.ErrDuplicateDefinition):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrEmptyTitle):
		util.BadRequest(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Created(ctx, created)
	}
}

func (c *TaxonomyController) remove(ctx *gin.Context, removeFn func(context.Context, int64) error) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}
	if err := removeFn(ctx.Request.Context(), id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
