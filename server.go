package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/middlewares"
	"bitbucket.org/kargodata/forwarding_backend/models"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer trace.Tracer = otel.Tracer("forwarding_backend")

// flipped once DB and redis are connected; requests before that get 503
var ready atomic.Bool

func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Correlation-Id", correlationId)
		c.Next()
	}
}

func readinessGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.Load() && c.FullPath() != "/healthz" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "starting up"})
			return
		}
		c.Next()
	}
}

// fixed-window limiter on redis INCR per client ip; inactive until redis is up
func rateLimitMiddleware() gin.HandlerFunc {
	limit := int64(intFromEnv("RATE_LIMIT_REQUESTS", 300))
	window := time.Duration(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second

	return func(c *gin.Context) {
		rdb := config.GetRedisDB()
		if rdb == nil {
			c.Next()
			return
		}

		key := "RateLimit:" + c.ClientIP()
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := utils.StringToInt(v)
	if err != nil {
		return def
	}
	return n
}

func corsConfig() cors.Config {
	corsCfg := cors.DefaultConfig()
	origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if origins == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(origins, ",")
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "token", "X-Correlation-Id")
	return corsCfg
}

// respondError maps model-layer errors onto HTTP statuses. Field-level
// validation problems come back as a list so forms can show all of them.
func respondError(c *gin.Context, err error) {
	var fieldErrors utils.FieldErrors
	switch {
	case errors.As(err, &fieldErrors):
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrTermSetLocked),
		errors.Is(err, models.ErrTermAlreadyInvoiced),
		errors.Is(err, models.ErrTermNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidExchangeRate),
		errors.Is(err, models.ErrInvalidTaxRate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), "main", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": utils.FormatValidationErrors(err)})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = defaultPort
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlationMiddleware())
	r.Use(cors.New(corsConfig()))
	r.Use(readinessGate())
	r.Use(rateLimitMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		if !ready.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", loginHandler)

	authorized := r.Group("/", middlewares.SessionMiddleware())
	{
		authorized.POST("/customers", createCustomerHandler)
		authorized.GET("/customers", listCustomersHandler)
		authorized.POST("/charge-types", createChargeTypeHandler)
		authorized.GET("/charge-types", listChargeTypesHandler)
		authorized.POST("/currencies", createCurrencyHandler)
		authorized.GET("/currencies", listCurrenciesHandler)
		authorized.POST("/currency-exchanges", createCurrencyExchangeHandler)

		authorized.POST("/bookings", createBookingHandler)
		authorized.GET("/bookings", listBookingsHandler)
		authorized.GET("/bookings/:id", getBookingHandler)
		authorized.POST("/bookings/:id/status", updateBookingStatusHandler)
		authorized.POST("/bookings/:id/documents", createShipmentDocumentHandler)
		authorized.GET("/bookings/:id/documents", listShipmentDocumentsHandler)

		authorized.GET("/bookings/:id/terms", getBookingTermsHandler)
		authorized.POST("/bookings/:id/terms", createBookingTermsHandler)
		authorized.PUT("/bookings/:id/terms", replaceBookingTermsHandler)
		authorized.POST("/bookings/:id/terms/:termId/invoice", generateTermInvoiceHandler)

		authorized.POST("/bookings/:id/cost-items", createCostItemHandler)
		authorized.GET("/bookings/:id/cost-items", listCostItemsHandler)
		authorized.POST("/cost-items/:id/status", updateCostItemStatusHandler)
		authorized.POST("/bookings/:id/revenue-items", createRevenueItemHandler)
		authorized.GET("/bookings/:id/revenue-items", listRevenueItemsHandler)
		authorized.POST("/revenue-items/:id/status", updateRevenueItemStatusHandler)

		authorized.GET("/bookings/:id/profitability", getBookingProfitabilityHandler)
		authorized.GET("/dashboard/profitability", getProfitabilityDashboardHandler)
		authorized.GET("/dashboard/profitability/export", exportProfitabilityHandler)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger := config.GetLogger()
		logger.Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Connect after the listener is up so the container passes its port check;
	// the readiness gate keeps traffic out until both stores answer.
	config.ConnectDatabaseWithRetry()
	if err := config.GetDB().Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error; err != nil {
		config.LogError(config.GetLogger(), "main", "main", "set isolation level", nil, err)
	}
	if err := models.MigrateTable(); err != nil {
		config.GetLogger().Fatalf("migration failed: %v", err)
	}
	config.ConnectRedisWithRetry()
	ready.Store(true)
	config.GetLogger().Info("ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.GetLogger().Errorf("shutdown: %v", err)
	}
	fmt.Println("server stopped")
}
