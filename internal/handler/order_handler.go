package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ログインユーザー向けの注文API
type OrderHandler struct {
	orderUC    *usecase.OrderUsecase
	workflowUC *usecase.OrderWorkflowUsecase
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, workflowUC *usecase.OrderWorkflowUsecase) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, workflowUC: workflowUC}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.place)
	g.GET("", h.listMine)
	g.GET("/:id", h.detail)
	g.POST("/:id/cancel", h.requestCancel)
}

type PlaceOrderRequest struct {
	Customer              model.OrderCustomer           `json:"customer"`
	Items                 []usecase.PlaceOrderItemInput `json:"items"`
	PreferredDeliveryDate *time.Time                    `json:"preferred_delivery_date"`

	//オンライン決済のときだけ入る
	PaymentID        string `json:"payment_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewaySignature string `json:"gateway_signature"`
}

func (h *OrderHandler) place(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//注文の持ち主はトークンのユーザーで固定する（bodyの申告は信用しない）
	req.Customer.UserID = userID

	out, err := h.orderUC.PlaceOrder(c.Request().Context(), usecase.PlaceOrderInput{
		Customer:              req.Customer,
		Items:                 req.Items,
		PreferredDeliveryDate: req.PreferredDeliveryDate,
		PaymentID:             req.PaymentID,
		GatewayOrderID:        req.GatewayOrderID,
		GatewaySignature:      req.GatewaySignature,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.orderUC.ListOrdersByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 自分の注文だけ見える（他人の注文は存在ごと隠す）
func (h *OrderHandler) loadOwned(c echo.Context) (usecase.OrderOutput, error) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.OrderOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	o, err := h.orderUC.GetOrderDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return usecase.OrderOutput{}, err
	}

	if o.Customer.UserID != userID && getUserRoleFromContext(c) != string(model.RoleAdmin) {
		return usecase.OrderOutput{}, usecase.ErrOrderNotFound
	}
	return o, nil
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.loadOwned(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) requestCancel(c echo.Context) error {
	o, err := h.loadOwned(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.workflowUC.RequestCancellation(c.Request().Context(), o.OrderID, req.Reason); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "cancellation requested"})
}
