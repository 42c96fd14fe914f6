package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/service"
)

type OrdersHTTP struct {
	Responder
	S *service.OrderService
}

func NewOrdersHTTP(s *service.OrderService, r Responder) *OrdersHTTP {
	return &OrdersHTTP{Responder: r, S: s}
}

type createOrderReq struct {
	Items []service.OrderLine `json:"items"`
}

type statusReq struct {
	Status model.OrderStatus `json:"status"`
}

func (h *OrdersHTTP) Create(c *gin.Context) {
	var in createOrderReq
	if !h.bind(c, &in) {
		return
	}
	id, _ := CurrentIdentity(c)
	o, err := h.S.Create(c.Request.Context(), id.ID, in.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order created", "order": o})
}

func (h *OrdersHTTP) ListOwn(c *gin.Context) {
	id, _ := CurrentIdentity(c)
	page := service.ParsePage(c.Query("page"), c.Query("limit"))
	res, err := h.S.ListOwn(c.Request.Context(), id.ID, c.Query("status"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrdersHTTP) GetOwn(c *gin.Context) {
	orderID, ok := h.pathID(c, "order")
	if !ok {
		return
	}
	id, _ := CurrentIdentity(c)
	o, err := h.S.GetOwn(c.Request.Context(), orderID, id.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) Cancel(c *gin.Context) {
	orderID, ok := h.pathID(c, "order")
	if !ok {
		return
	}
	id, _ := CurrentIdentity(c)
	if err := h.S.Cancel(c.Request.Context(), orderID, id.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
}

func (h *OrdersHTTP) ListAll(c *gin.Context) {
	page := service.ParsePage(c.Query("page"), c.Query("limit"))
	res, err := h.S.ListAll(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrdersHTTP) SetStatus(c *gin.Context) {
	orderID, ok := h.pathID(c, "order")
	if !ok {
		return
	}
	var in statusReq
	if !h.bind(c, &in) {
		return
	}
	o, err := h.S.SetStatus(c.Request.Context(), orderID, in.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": o})
}
