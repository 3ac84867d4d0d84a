package routes

import (
	"net/http"

	"panierbio/auth"
	"panierbio/cart"
	"panierbio/middleware"
	"panierbio/models"
	"panierbio/orders"
	"panierbio/products"
	"panierbio/ratelim"
	"panierbio/reviews"
	"panierbio/stats"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(h.Register))
	router.POST("/api/auth/login", rl.Limit(h.Login))
	router.POST("/api/auth/logout", mw.Authenticate(h.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(mw.Authenticate(h.RefreshToken)))
}

func AddProductRoutes(router *httprouter.Router, h *products.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/api/products", h.List)
	router.GET("/api/products/seller/:sellerId", h.ListBySeller)
	router.GET("/api/product/:productId", h.Get)
	router.POST("/api/products", rl.Limit(mw.Authenticate(h.Create)))
	router.PUT("/api/products/:productId", mw.Authenticate(h.Update))
	router.DELETE("/api/products/:productId", mw.Authenticate(h.Delete))
	router.POST("/api/products/:productId/image", mw.Authenticate(h.UploadImage))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handler, hub *orders.Hub, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.Limit(mw.Authenticate(h.Create)))
	router.GET("/api/orders", mw.Authenticate(h.List))
	router.GET("/api/orders/:orderId", mw.Authenticate(h.Get))
	router.PUT("/api/orders/:orderId", mw.Authenticate(h.UpdateStatus))
	router.GET("/api/orders/:orderId/receipt", mw.Authenticate(h.Receipt))

	// live dashboard feed; the token rides in the query string because
	// browsers cannot set Authorization on websockets
	router.GET("/api/order-updates", hub.HandleWS)
}

func AddReviewRoutes(router *httprouter.Router, h *reviews.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/reviews", rl.Limit(mw.Authenticate(h.Create)))
	router.GET("/api/reviews/:productId", h.List)
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handler, mw *middleware.Auth) {
	router.POST("/api/cart", mw.Authenticate(h.Add))
	router.GET("/api/cart", mw.Authenticate(h.List))
	router.PUT("/api/cart", mw.Authenticate(h.Replace))
	router.DELETE("/api/cart/:productId", mw.Authenticate(h.Remove))
}

func AddStatsRoutes(router *httprouter.Router, h *stats.Handler, mw *middleware.Auth) {
	router.GET("/api/seller/stats/:sellerId", mw.Authenticate(h.Seller))
	router.GET("/api/admin/stats", mw.RequireRole(models.RoleAdmin, h.Admin))
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir(uploadDir))
}
