package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/service"
)

type UsersHTTP struct {
	Responder
	S *service.UserService
}

func NewUsersHTTP(s *service.UserService, r Responder) *UsersHTTP {
	return &UsersHTTP{Responder: r, S: s}
}

func (h *UsersHTTP) List(c *gin.Context) {
	page := service.ParsePage(c.Query("page"), c.Query("limit"))
	res, err := h.S.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UsersHTTP) SetRole(c *gin.Context) {
	id, ok := h.pathID(c, "user")
	if !ok {
		return
	}
	var in struct {
		Role model.Role `json:"role"`
	}
	if !h.bind(c, &in) {
		return
	}
	p, err := h.S.SetRole(c.Request.Context(), id, in.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user role updated", "user": p})
}
