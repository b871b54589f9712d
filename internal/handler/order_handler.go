package handler

import (
	"net/http"

	"backend/internal/apperr"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes binds order endpoints; any authenticated role may use them.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders", middleware.RequireAuth())
	{
		orders.GET("", h.ListOrders)
		orders.GET("/export", h.ExportOrders)
		orders.GET("/:id", h.GetOrderByID)
		orders.GET("/:id/cost", h.GetOrderCost)
		orders.POST("", h.CreateOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// ListOrders handles GET /orders
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Param        status  query     string  false  "Filter by status"  Enums(pending, in-progress, completed)
// @Success      200     {object}  response.Response{data=object}
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), params.Page, params.Limit, status)
	if err != nil {
		code := apperr.Status(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"meta":   params.NewMeta(total),
	}))
}

// GetOrderByID handles GET /orders/:id
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GetOrderCost handles GET /orders/:id/cost. It returns the total cost
// captured when the order was last written alongside a fresh computation
// against current catalog prices.
// @Summary      Get stored and recomputed order cost
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderCostResponse}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id}/cost [get]
func (h *OrderHandler) GetOrderCost(c *gin.Context) {
	cost, err := h.orderService.Cost(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cost))
}

// CreateOrder handles POST /orders
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actorID, _ := middleware.CurrentUserID(c)
	order, err := h.orderService.CreateOrder(c.Request.Context(), actorID, req)
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// UpdateOrder handles PUT /orders/:id
// @Summary      Update order, replacing its lines and re-snapshotting cost
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.UpdateOrderRequest  true  "Update Order Payload"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	actorID, _ := middleware.CurrentUserID(c)
	order, err := h.orderService.UpdateOrder(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder handles DELETE /orders/:id
// @Summary      Delete order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	actorID, _ := middleware.CurrentUserID(c)

	if err := h.orderService.DeleteOrder(c.Request.Context(), actorID, c.Param("id")); err != nil {
		status := apperr.Status(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Order deleted successfully"))
}

// ExportOrders handles GET /orders/export as a CSV download
// @Summary      Export orders as CSV
// @Tags         orders
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV file"
// @Router       /orders/export [get]
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	rows, err := h.orderService.ExportRows(c.Request.Context())
	if err != nil {
		exportError(c, err)
		return
	}
	writeCSV(c, "orders.csv", rows)
}
