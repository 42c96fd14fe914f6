package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/service"
)

type AuthHTTP struct {
	Responder
	S *service.AuthService
}

func NewAuthHTTP(s *service.AuthService, r Responder) *AuthHTTP { return &AuthHTTP{Responder: r, S: s} }

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) register(c *gin.Context, in service.RegisterInput) {
	p, err := h.S.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered",
		"user": gin.H{
			"id":        p.ID,
			"email":     p.Email,
			"full_name": p.FullName,
			"role":      p.Role,
		},
	})
}

func (h *AuthHTTP) Register(c *gin.Context) {
	var in service.RegisterInput
	if !h.bind(c, &in) {
		return
	}
	// self-service sign-ups are always customers
	in.Role = ""
	h.register(c, in)
}

// AdminRegister lets an admin create an account with an explicit role.
func (h *AuthHTTP) AdminRegister(c *gin.Context) {
	var in service.RegisterInput
	if !h.bind(c, &in) {
		return
	}
	h.register(c, in)
}

func (h *AuthHTTP) Login(c *gin.Context) {
	var in loginReq
	if !h.bind(c, &in) {
		return
	}
	res, err := h.S.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user": gin.H{
			"id":      res.Session.User.ID,
			"email":   res.Session.User.Email,
			"profile": res.Profile,
		},
		"session": res.Session,
	})
}

func (h *AuthHTTP) Logout(c *gin.Context) {
	if err := h.S.Logout(c.Request.Context(), currentToken(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHTTP) Profile(c *gin.Context) {
	id, _ := CurrentIdentity(c)
	p, err := h.S.Profile(c.Request.Context(), id.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
