// Package store is the HTTP boundary of the store directory.
package store

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumapp/marketplace/api/response"
	storeapp "github.com/lumapp/marketplace/application/store"
	"github.com/lumapp/marketplace/pkg/errors"
)

// Controller serves the store routes.
type Controller struct {
	storeService *storeapp.ApplicationService
}

func NewController(storeService *storeapp.ApplicationService) *Controller {
	return &Controller{storeService: storeService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	storeGroup := router.Group("/stores")
	{
		storeGroup.POST("", c.CreateStore)
		storeGroup.GET("", c.ListStores)
		storeGroup.GET("/:id", c.GetStore)
		storeGroup.GET("/slug/:slug", c.GetStoreBySlug)
		storeGroup.PUT("/:id", c.UpdateStore)
		storeGroup.DELETE("/:id", c.DeactivateStore)
	}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.HandleError(ctx, errors.BadRequest("invalid "+name),
			"invalid "+name+" parameter", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// CreateStore handles POST /api/v1/stores; a taken slug yields 409.
func (c *Controller) CreateStore(ctx *gin.Context) {
	var req storeapp.CreateStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	store, err := c.storeService.CreateStore(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, store, "store created successfully")
}

func (c *Controller) GetStore(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	store, err := c.storeService.GetStore(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, store, "store retrieved successfully")
}

func (c *Controller) GetStoreBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if slug == "" {
		response.HandleError(ctx, errors.BadRequest("store slug is required"),
			"store slug is required", http.StatusBadRequest)
		return
	}

	store, err := c.storeService.GetStoreBySlug(ctx.Request.Context(), slug)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, store, "store retrieved successfully")
}

func (c *Controller) ListStores(ctx *gin.Context) {
	var query storeapp.ListStoresQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	stores, err := c.storeService.ListStores(ctx.Request.Context(), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePaginated(ctx, stores, response.Pagination{
		Limit:  query.Limit,
		Offset: query.Offset,
		Count:  len(stores),
	}, "stores retrieved successfully")
}

func (c *Controller) UpdateStore(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req storeapp.UpdateStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	store, err := c.storeService.UpdateStore(ctx.Request.Context(), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, store, "store updated successfully")
}

func (c *Controller) DeactivateStore(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.storeService.DeactivateStore(ctx.Request.Context(), id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}
