// Package server wires the fraud dashboard HTTP API: middleware, routes,
// dataset selection state, and lifecycle.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/mbd888/fraudlens/internal/config"
	"github.com/mbd888/fraudlens/internal/dashboard"
	"github.com/mbd888/fraudlens/internal/dataset"
	"github.com/mbd888/fraudlens/internal/detector"
	"github.com/mbd888/fraudlens/internal/health"
	"github.com/mbd888/fraudlens/internal/history"
	"github.com/mbd888/fraudlens/internal/idgen"
	"github.com/mbd888/fraudlens/internal/logging"
	"github.com/mbd888/fraudlens/internal/metrics"
	"github.com/mbd888/fraudlens/internal/pagination"
	"github.com/mbd888/fraudlens/internal/ratelimit"
	"github.com/mbd888/fraudlens/internal/realtime"
	"github.com/mbd888/fraudlens/internal/retry"
	"github.com/mbd888/fraudlens/internal/security"
	"github.com/mbd888/fraudlens/internal/syncutil"
	"github.com/mbd888/fraudlens/internal/validation"
	"github.com/mbd888/fraudlens/internal/watcher"
)

// sourceAll names the combined view over every readable dataset.
const sourceAll = "All Data Combined"

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg         *config.Config
	loader      *dataset.Loader
	detector    *detector.Detector
	history     history.Store
	hub         *realtime.Hub
	watcher     *watcher.Watcher
	checks      *health.Registry
	rateLimiter *ratelimit.Limiter
	db          *sql.DB // nil if using in-memory
	router      *gin.Engine
	httpSrv     *http.Server
	logger      *slog.Logger
	cancelRun   context.CancelFunc // cancels background goroutines started in Run

	// Dataset selection cursor; -1 is the combined view. Only the refresh
	// handler advances it, serialized by mu because a switch retrains the
	// model and may take a while.
	mu     *syncutil.ContextMutex
	cursor int
	source string

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryStore sets a custom assessment store (for testing)
func WithHistoryStore(store history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// New creates a new server instance. It opens the assessment store, loads
// the combined dataset, and trains the initial model before returning.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, cfg.LogFormat),
		mu:     syncutil.NewContextMutex(),
		cursor: -1,
		source: sourceAll,
	}

	// Apply options first (may set history store/logger)
	for _, opt := range opts {
		opt(s)
	}

	ctx := logging.WithLogger(context.Background(), s.logger)

	// Assessment history (Postgres if DATABASE_URL set, otherwise in-memory)
	if s.history == nil {
		if cfg.DatabaseURL != "" {
			db, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}

			// Configure connection pool
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			// Test connection. A freshly started Postgres may not accept
			// connections yet, so allow a few attempts.
			if err := retry.Do(ctx, 5, 500*time.Millisecond, func() error {
				return db.PingContext(ctx)
			}); err != nil {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}

			s.db = db
			store := history.NewPostgresStore(db)
			if err := store.Migrate(ctx); err != nil {
				s.logger.Warn("failed to migrate assessment store", "error", err)
			}
			s.history = store
			s.logger.Info("using PostgreSQL assessment history", "url", maskDSN(cfg.DatabaseURL))
		} else {
			s.history = history.NewMemoryStore()
			s.logger.Info("using in-memory assessment history (data will not persist)")
		}
	}

	s.loader = dataset.NewLoader(cfg.DataDir)
	s.detector = detector.New()
	s.hub = realtime.NewHub(s.logger).WithMaxClients(cfg.MaxWSClients)
	s.watcher = watcher.New(watcher.DefaultConfig(), s.loader, s.hub, s.logger)

	// Start on the combined view, like every later refresh cycle does.
	table := s.loader.LoadAll(ctx)
	if err := s.detector.Train(ctx, table); err != nil {
		s.logger.Warn("initial model training failed, dashboard serves unscored data", "error", err)
	}

	s.setupHealthChecks()

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

func (s *Server) setupHealthChecks() {
	s.checks = health.NewRegistry()

	s.checks.Register("data-dir", func(ctx context.Context) health.Status {
		if _, err := os.Stat(s.cfg.DataDir); err != nil {
			return health.Fail("data-dir", err.Error())
		}
		return health.OK("data-dir")
	})

	s.checks.Register("detector", func(ctx context.Context) health.Status {
		if !s.detector.HasData() {
			return health.Fail("detector", "no dataset loaded")
		}
		if !s.detector.Trained() {
			return health.Status{Name: "detector", Healthy: true, Detail: "dataset loaded, model untrained"}
		}
		return health.OK("detector")
	})

	s.checks.Register("history", func(ctx context.Context) health.Status {
		if err := s.history.Ping(ctx); err != nil {
			return health.Fail("history", err.Error())
		}
		return health.OK("history")
	})
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(s.cfg.AllowedOrigins))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.Config{
		RequestsPerSecond: s.cfg.RateLimitRPS,
		BurstSize:         s.cfg.RateLimitBurst,
		CleanupInterval:   time.Minute,
	})
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.New()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/healthz", s.healthzHandler)
	s.router.GET("/readyz", s.readyzHandler)
	s.router.GET("/metrics", metrics.Handler())

	// The dashboard page (everything it needs lives under /api)
	s.router.GET("/", dashboardPageHandler)

	// WebSocket for real-time events
	s.router.GET("/ws", func(c *gin.Context) {
		s.hub.HandleWebSocket(c.Writer, c.Request)
	})

	api := s.router.Group("/api")

	api.GET("/stats", s.statsHandler)
	api.GET("/transactions", s.transactionsHandler)
	api.GET("/search", s.searchHandler)
	api.POST("/analyze", s.analyzeHandler)
	api.POST("/refresh", s.refreshHandler)
	api.GET("/export", s.exportHandler)
	api.GET("/datasets", s.datasetsHandler)
	api.GET("/history", s.historyHandler)

	// Chart and report endpoints
	dashboard.NewHandler(s.detector).RegisterRoutes(api)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (s *Server) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.detector.Statistics())
}

func (s *Server) transactionsHandler(c *gin.Context) {
	params := pagination.FromQuery(c.Query("page"), c.Query("per_page"))
	c.JSON(http.StatusOK, s.detector.Transactions(params.Page, params.PerPage))
}

func (s *Server) searchHandler(c *gin.Context) {
	q := validation.SanitizeQuery(c.Query("q"))
	results := s.detector.Search(q)
	metrics.SearchRequestsTotal.Inc()
	c.JSON(http.StatusOK, results)
}

func (s *Server) analyzeHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	result := s.detector.Analyze(ctx, fields)
	metrics.AnalyzeRequestsTotal.WithLabelValues(result.RiskLevel).Inc()

	// Only real classifications reach the audit trail and the event stream;
	// the untrained and unreadable-amount sentinels do not.
	if result.Error == "" && result.RiskLevel != detector.RiskError {
		amount, txType, location, _ := detector.RequestFields(fields)
		s.saveAssessment(ctx, amount, txType, location, result)
		s.hub.BroadcastAnalysis(amount, result.Probability, result.RiskLevel)
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) saveAssessment(ctx context.Context, amount float64, txType, location string, result detector.Result) {
	a := &history.Assessment{
		ID:             idgen.WithPrefix("asmt_"),
		Amount:         amount,
		Type:           txType,
		Location:       location,
		IsFraud:        result.IsFraud,
		Probability:    result.Probability,
		RiskLevel:      result.RiskLevel,
		Recommendation: result.Recommendation,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.history.Save(ctx, a); err != nil {
		logging.L(ctx).Error("failed to save assessment", "id", a.ID, "error", err)
	}
}

func (s *Server) historyHandler(c *gin.Context) {
	ctx := c.Request.Context()
	limit := validation.PositiveInt(c.Query("limit"), history.DefaultRecentLimit)

	assessments, err := s.history.Recent(ctx, limit)
	if err != nil {
		logging.L(ctx).Error("failed to read assessment history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "history_error",
			"message": "Failed to read assessment history",
		})
		return
	}
	count, err := s.history.Count(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to count assessments", "error", err)
		count = len(assessments)
	}
	if assessments == nil {
		assessments = []*history.Assessment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"count":       count,
	})
}

// refreshHandler advances the dataset cursor one step (-1, 0, .., n-1, -1),
// reloads that selection, and retrains. The catalog is re-listed on every
// call, so files added or removed at runtime join the cycle immediately.
func (s *Server) refreshHandler(c *gin.Context) {
	ctx := c.Request.Context()

	unlock, err := s.mu.Lock(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "busy",
			"message": "Another dataset switch is in progress",
		})
		return
	}
	defer unlock()

	catalog := s.loader.List()
	next := s.cursor + 1
	if next >= len(catalog) {
		next = -1
	}

	var (
		table  *dataset.Table
		source string
	)
	if next == -1 {
		table = s.loader.LoadAll(ctx)
		source = sourceAll
	} else {
		source = catalog[next].Name
		table = s.loader.Load(ctx, source)
	}

	// A failed fit still installs the table; the response reports the switch
	// either way, like the views that now serve unscored rows.
	if err := s.detector.Train(ctx, table); err != nil {
		logging.L(ctx).Warn("training failed after dataset switch", "source", source, "error", err)
	}

	s.cursor = next
	s.source = source

	count := s.detector.RowCount()
	s.hub.BroadcastDatasetSwitched(source, count)
	if s.detector.Trained() {
		stats := s.detector.Statistics()
		s.hub.BroadcastModelTrained(stats.TotalTransactions, stats.FraudRate)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"source":  source,
		"count":   count,
		"message": "Switched to " + source,
	})
}

func (s *Server) datasetsHandler(c *gin.Context) {
	catalog := s.loader.List()
	if catalog == nil {
		catalog = []dataset.Info{}
	}

	unlock, err := s.mu.Lock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "busy",
			"message": "A dataset switch is in progress",
		})
		return
	}
	cursor, source := s.cursor, s.source
	unlock()

	c.JSON(http.StatusOK, gin.H{
		"datasets": catalog,
		"current": gin.H{
			"index":  cursor,
			"source": source,
		},
	})
}

func (s *Server) exportHandler(c *gin.Context) {
	if !s.detector.HasData() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data to export"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=fraud_data_export.csv")

	if err := s.detector.WriteCSV(c.Writer); err != nil {
		// Too late for an error status once the body started streaming.
		logging.L(c.Request.Context()).Error("csv export failed", "error", err)
		return
	}
	metrics.ExportsTotal.Inc()
}

func (s *Server) healthzHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readyzHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, checks := s.checks.CheckAll(ctx)
	if !s.ready.Load() || !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel

	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"addr", s.httpSrv.Addr,
			"data_dir", s.cfg.DataDir,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.hub.Run(runCtx)

	// Watch the data directory so the dataset list stays current
	go s.watcher.Run(runCtx)

	// Sample connection pool stats while a database is attached
	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, collectors)
	if s.cancelRun != nil {
		s.cancelRun()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
