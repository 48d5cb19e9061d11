// Package user is the HTTP boundary of the user directory.
package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumapp/marketplace/api/response"
	userapp "github.com/lumapp/marketplace/application/user"
	"github.com/lumapp/marketplace/pkg/errors"
)

// Controller serves the user routes.
type Controller struct {
	userService *userapp.ApplicationService
}

func NewController(userService *userapp.ApplicationService) *Controller {
	return &Controller{userService: userService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	userGroup := router.Group("/users")
	{
		userGroup.POST("", c.CreateUser)
		userGroup.GET("", c.ListUsers)
		userGroup.GET("/:id", c.GetUser)
		userGroup.GET("/external/:uuid", c.GetUserByExternalID)
		userGroup.PUT("/:id", c.UpdateUser)
		userGroup.DELETE("/:id", c.DeactivateUser)
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

func (c *Controller) CreateUser(ctx *gin.Context) {
	var req userapp.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, user, "user created successfully")
}

func (c *Controller) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, user, "user retrieved successfully")
}

func (c *Controller) GetUserByExternalID(ctx *gin.Context) {
	externalID := ctx.Param("uuid")
	if externalID == "" {
		response.HandleError(ctx, errors.BadRequest("user external ID is required"),
			"user external ID is required", http.StatusBadRequest)
		return
	}

	user, err := c.userService.GetUserByExternalID(ctx.Request.Context(), externalID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, user, "user retrieved successfully")
}

func (c *Controller) ListUsers(ctx *gin.Context) {
	var query userapp.ListUsersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	users, err := c.userService.ListUsers(ctx.Request.Context(), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePaginated(ctx, users, response.Pagination{
		Limit:  query.Limit,
		Offset: query.Offset,
		Count:  len(users),
	}, "users retrieved successfully")
}

func (c *Controller) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req userapp.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, user, "user updated successfully")
}

func (c *Controller) DeactivateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.DeactivateUser(ctx.Request.Context(), id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}
