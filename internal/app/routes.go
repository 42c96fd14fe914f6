package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/handlers"
	"example.com/storefront/internal/validation"
)

type routeHandlers struct {
	resp     handlers.Responder
	gateway  handlers.TokenVerifier
	roles    handlers.RoleChecker
	auth     *handlers.AuthHTTP
	products *handlers.ProductsHTTP
	orders   *handlers.OrdersHTTP
	users    *handlers.UsersHTTP
}

func registerRoutes(r *gin.Engine, h routeHandlers) {
	authn := h.resp.Authenticate(h.gateway)
	admin := h.resp.RequireAdmin(h.roles)
	valid := h.resp.Validate

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", valid(validation.Register), h.auth.Register)
	auth.POST("/admin/register", authn, admin, valid(validation.AdminRegister), h.auth.AdminRegister)
	auth.POST("/login", valid(validation.Login), h.auth.Login)
	auth.POST("/logout", authn, h.auth.Logout)
	auth.GET("/profile", authn, h.auth.Profile)

	products := r.Group("/products")
	products.GET("", h.products.List)
	products.GET("/:id", h.products.Get)
	products.POST("", authn, admin, valid(validation.Product), h.products.Create)
	products.PUT("/:id", authn, admin, valid(validation.Product), h.products.Update)
	products.DELETE("/:id", authn, admin, h.products.Delete)

	orders := r.Group("/orders")
	orders.POST("/create-order", authn, valid(validation.OrderRequest), h.orders.Create)
	orders.GET("/list-orders", authn, h.orders.ListOwn)
	orders.GET("/:id", authn, h.orders.GetOwn)
	orders.PATCH("/:id/cancel", authn, h.orders.Cancel)
	orders.GET("", authn, admin, h.orders.ListAll)
	orders.PATCH("/:id/status", authn, admin, valid(validation.StatusUpdate), h.orders.SetStatus)

	users := r.Group("/users")
	users.GET("", authn, admin, h.users.List)
	users.PATCH("/:id/role", authn, admin, valid(validation.RoleUpdate), h.users.SetRole)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
