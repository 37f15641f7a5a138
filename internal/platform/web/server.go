// Package web exposes the tap runner over HTTP: Prometheus metrics, the
// stored best score, the run history and a headless simulation endpoint.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/taprunner/internal/config"
	"github.com/vovakirdan/taprunner/internal/games/taprunner"
	"github.com/vovakirdan/taprunner/internal/metrics"
	"github.com/vovakirdan/taprunner/internal/storage"
)

// maxSimTicks bounds a single simulation request.
const maxSimTicks = 100_000

// Handler serves the HTTP API.
type Handler struct {
	Config  config.Config
	Store   storage.Backend
	Runs    storage.RunRecorder
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/config", h.GetConfig)
	api.GET("/best", h.GetBest)
	api.GET("/runs", h.GetRuns)
	api.POST("/sim", h.PostSim)
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if h.Logger != nil {
			h.Logger.Debug("http request",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"duration", time.Since(start),
			)
		}
	}
}

// GetConfig returns the resolved engine configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Config.Resolved())
}

// GetBest returns the stored best score.
func (h *Handler) GetBest(c *gin.Context) {
	key := h.Config.Resolved().Session.BestScoreKey
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"key": key, "best": 0, "stored": false})
		return
	}

	best, ok, err := h.Store.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read best score"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "best": best, "stored": ok})
}

// GetRuns returns the run history, ?view=top|recent&limit=N.
func (h *Handler) GetRuns(c *gin.Context) {
	if h.Runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "store keeps no run history"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	var runs []storage.Run
	switch view := c.DefaultQuery("view", "top"); view {
	case "top":
		runs, err = h.Runs.TopRuns(c.Request.Context(), limit)
	case "recent":
		runs, err = h.Runs.RecentRuns(c.Request.Context(), limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be top or recent"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load runs"})
		return
	}

	out := make([]runJSON, len(runs))
	for i, r := range runs {
		out[i] = newRunJSON(r)
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

type runJSON struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Ticks     uint64    `json:"ticks"`
	Reason    string    `json:"reason"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

func newRunJSON(r storage.Run) runJSON {
	return runJSON(r)
}

type simRequest struct {
	Seed      int64    `json:"seed"`
	MaxTicks  int      `json:"max_ticks"`
	FrameMs   float64  `json:"frame_ms"`
	Taps      []uint64 `json:"taps"`
	Autopilot bool     `json:"autopilot"`
}

// PostSim runs a headless session with the server config and returns its
// outcome. The result is never stored.
func (h *Handler) PostSim(c *gin.Context) {
	var req simRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MaxTicks > maxSimTicks {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_ticks too large"})
		return
	}

	cfg := h.Config
	cfg.Seed = req.Seed
	res, err := taprunner.Simulate(cfg, taprunner.SimOptions{
		MaxTicks:  req.MaxTicks,
		FrameMs:   req.FrameMs,
		Taps:      req.Taps,
		Autopilot: req.Autopilot,
	})
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cfgErr.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticks": res.Ticks,
		"score": res.Final.Score,
		"state": res.Final.State.String(),
		"runs":  res.Runs,
	})
}

// Server is an HTTP server running the Handler's router.
type Server struct {
	srv    *http.Server
	logger *log.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: h.Logger,
	}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		if s.logger != nil {
			s.logger.Info("starting HTTP server", "address", s.srv.Addr)
		}
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && s.logger != nil {
			s.logger.Error("http server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.srv.Addr
}
