package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/service"
)

type ProductsHTTP struct {
	Responder
	S *service.ProductService
}

func NewProductsHTTP(s *service.ProductService, r Responder) *ProductsHTTP {
	return &ProductsHTTP{Responder: r, S: s}
}

func (h *ProductsHTTP) List(c *gin.Context) {
	page := service.ParsePage(c.Query("page"), c.Query("limit"))
	res, err := h.S.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProductsHTTP) Get(c *gin.Context) {
	id, ok := h.pathID(c, "product")
	if !ok {
		return
	}
	p, err := h.S.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Create(c *gin.Context) {
	var in service.ProductInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.S.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "product created", "product": p})
}

func (h *ProductsHTTP) Update(c *gin.Context) {
	id, ok := h.pathID(c, "product")
	if !ok {
		return
	}
	var in service.ProductInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.S.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product updated", "product": p})
}

func (h *ProductsHTTP) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "product")
	if !ok {
		return
	}
	if err := h.S.Deactivate(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deactivated"})
}
