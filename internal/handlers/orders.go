package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"avatar-wizard-backend/internal/avatar"
	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/wizard"
)

type OrdersHandler struct {
	pipeline *avatar.Pipeline
	sessions *wizard.Store
}

func NewOrdersHandler(pipeline *avatar.Pipeline, sessions *wizard.Store) *OrdersHandler {
	return &OrdersHandler{
		pipeline: pipeline,
		sessions: sessions,
	}
}

// SubmitOrder godoc
// @Summary     Submit an order
// @Description Validates the contact details server-side and persists the order with status "pending".
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.SubmitOrderRequest true "Contact details and image URLs"
// @Success     200 {object} models.SubmitOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/submit-order [post]
func (h *OrdersHandler) SubmitOrder(c *gin.Context) {
	var req models.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order data", Message: err.Error()})
		return
	}

	order, err := h.pipeline.SubmitOrder(c.Request.Context(), req)
	if err != nil {
		var valErr *avatar.ValidationError
		if errors.As(err, &valErr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:  "invalid order data",
				Fields: valErr.Fields,
			})
			return
		}
		log.Printf("order submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to process order"})
		return
	}

	// A completed order ends the wizard session.
	if id, ok := optionalSessionID(c); ok {
		h.sessions.Reset(id)
	}

	c.JSON(http.StatusOK, models.SubmitOrderResponse{
		Success: true,
		OrderID: order.ID,
		Message: "Your order has been received. You will receive an email with further instructions.",
	})
}

// ListOrders godoc
// @Summary     List all orders
// @Description Returns every order, newest first. Administrative endpoint.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.OrderResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, err := h.pipeline.ListOrders(c.Request.Context())
	if err != nil {
		log.Printf("failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch orders"})
		return
	}

	responses := make([]models.OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = orderResponse(&order)
	}

	c.JSON(http.StatusOK, responses)
}

// GetOrder godoc
// @Summary     Get one order
// @Description Returns a single order by id. Administrative endpoint.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order ID"})
		return
	}

	order, err := h.pipeline.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, avatar.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
			return
		}
		log.Printf("failed to get order %d: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

// UpdateStatus godoc
// @Summary     Update order status
// @Description Overwrites the status unconditionally; any non-empty value is accepted. Administrative endpoint.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Order ID"
// @Param       request body models.UpdateOrderStatusRequest true "New status"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/orders/{id}/status [patch]
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order ID"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "status is required"})
		return
	}

	order, err := h.pipeline.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		if errors.Is(err, avatar.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
			return
		}
		log.Printf("failed to update order %d status: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

func orderResponse(order *models.Order) models.OrderResponse {
	resp := models.OrderResponse{
		ID:                 order.ID,
		FirstName:          order.FirstName,
		LastName:           order.LastName,
		Email:              order.Email,
		Phone:              order.Phone,
		OriginalImageURL:   order.OriginalImageURL,
		GeneratedAvatarURL: order.GeneratedAvatarURL,
		Status:             order.Status,
		CreatedAt:          order.CreatedAt,
	}
	if order.Prompt.Valid {
		resp.Prompt = order.Prompt.String
	}
	if order.ModelURL.Valid {
		resp.ModelURL = order.ModelURL.String
	}
	return resp
}
