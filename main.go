package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panierbio/auth"
	"panierbio/cart"
	"panierbio/config"
	"panierbio/db"
	"panierbio/middleware"
	"panierbio/mq"
	"panierbio/orders"
	"panierbio/products"
	"panierbio/ratelim"
	"panierbio/rdx"
	"panierbio/reviews"
	"panierbio/routes"
	"panierbio/stats"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// health is a simple liveness handler.
func health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}

	cache, err := rdx.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	bus := mq.NewBus(cache)
	go bus.StartStatsWorker(ctx)

	mw := middleware.NewAuth(cfg.JWTSecret, 12*time.Hour)
	rateLimiter := ratelim.NewRateLimiter(5, 10)
	hub := orders.NewHub(mw)

	router := httprouter.New()
	router.GET("/health", health)
	routes.AddAuthRoutes(router, auth.NewHandler(database, cache, mw), mw, rateLimiter)
	routes.AddProductRoutes(router, products.NewHandler(database, bus, cfg.UploadDir), mw, rateLimiter)
	routes.AddOrderRoutes(router, orders.NewHandler(database, bus, hub, cfg.JWTSecret), hub, mw, rateLimiter)
	routes.AddReviewRoutes(router, reviews.NewHandler(database, bus), mw, rateLimiter)
	routes.AddCartRoutes(router, cart.NewHandler(database), mw)
	routes.AddStatsRoutes(router, stats.NewHandler(database, cache), mw)
	routes.AddStaticRoutes(router, cfg.UploadDir)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	cancel() // stops the stats worker
	if err := database.Close(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	log.Println("Server stopped cleanly")
}
