/*
Package order is the HTTP boundary of the order flow. Handlers bind and
sanity-check input, delegate to the application service, and hand results to
the response package; no business rules live here.
*/
package order

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumapp/marketplace/api/response"
	orderapp "github.com/lumapp/marketplace/application/order"
	"github.com/lumapp/marketplace/pkg/errors"
)

// Controller serves the order routes.
type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterRoutes mounts the order surface on the versioned group.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/orders")
	{
		orderGroup.POST("", c.CreateOrder)
		orderGroup.GET("", c.ListOrders)
		orderGroup.GET("/:id", c.GetOrder)
		orderGroup.GET("/external/:uuid", c.GetOrderByExternalID)
		orderGroup.GET("/user/:userId", c.GetUserOrders)
		orderGroup.PUT("/:id", c.UpdateOrder)
		orderGroup.DELETE("/:id", c.DeleteOrder)
		orderGroup.PUT("/sub-orders/:id/status", c.UpdateSubOrderStatus)
		orderGroup.POST("/:id/messages", c.CreateMessage)
		orderGroup.GET("/:id/messages", c.ListMessages)
		orderGroup.PUT("/messages/:id", c.MarkMessageRead)
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

// CreateOrder handles POST /api/v1/orders.
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.CreateOrder(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, order, "order created successfully")
}

// GetOrder handles GET /api/v1/orders/:id.
func (c *Controller) GetOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	order, err := c.orderService.GetOrder(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// GetOrderByExternalID handles GET /api/v1/orders/external/:uuid.
func (c *Controller) GetOrderByExternalID(ctx *gin.Context) {
	externalID := ctx.Param("uuid")
	if externalID == "" {
		response.HandleError(ctx, errors.BadRequest("order external ID is required"),
			"order external ID is required", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.GetOrderByExternalID(ctx.Request.Context(), externalID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// ListOrders handles GET /api/v1/orders with user_id, status, store_id and
// paging filters.
func (c *Controller) ListOrders(ctx *gin.Context) {
	var query orderapp.ListOrdersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	orders, err := c.orderService.ListOrders(ctx.Request.Context(), query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePaginated(ctx, orders, response.Pagination{
		Limit:  query.Limit,
		Offset: query.Offset,
		Count:  len(orders),
	}, "orders retrieved successfully")
}

// GetUserOrders handles GET /api/v1/orders/user/:userId.
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	var query orderapp.ListOrdersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	orders, err := c.orderService.GetUserOrders(ctx.Request.Context(), userID, query)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, orders, "orders retrieved successfully")
}

// UpdateOrder handles PUT /api/v1/orders/:id with an explicit patch body.
func (c *Controller) UpdateOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req orderapp.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.UpdateOrder(ctx.Request.Context(), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order updated successfully")
}

// DeleteOrder handles DELETE /api/v1/orders/:id.
func (c *Controller) DeleteOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.orderService.DeleteOrder(ctx.Request.Context(), id); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}

// UpdateSubOrderStatus handles PUT /api/v1/orders/sub-orders/:id/status.
func (c *Controller) UpdateSubOrderStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req orderapp.UpdateSubOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.UpdateSubOrderStatus(ctx.Request.Context(), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "sub-order status updated successfully")
}

// CreateMessage handles POST /api/v1/orders/:id/messages. The sender comes
// from the body or the from_user_id query parameter; the query wins.
func (c *Controller) CreateMessage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req orderapp.CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	if fromUser := ctx.Query("from_user_id"); fromUser != "" {
		senderID, err := strconv.ParseInt(fromUser, 10, 64)
		if err != nil || senderID <= 0 {
			response.HandleError(ctx, errors.BadRequest("invalid from_user_id"),
				"invalid from_user_id parameter", http.StatusBadRequest)
			return
		}
		req.SenderID = &senderID
	}

	message, err := c.orderService.CreateMessage(ctx.Request.Context(), id, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, message, "message posted successfully")
}

// ListMessages handles GET /api/v1/orders/:id/messages.
func (c *Controller) ListMessages(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	messages, err := c.orderService.ListMessages(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, messages, "messages retrieved successfully")
}

// MarkMessageRead handles PUT /api/v1/orders/messages/:id.
func (c *Controller) MarkMessageRead(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	message, err := c.orderService.MarkMessageRead(ctx.Request.Context(), id)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, message, "message marked as read")
}
