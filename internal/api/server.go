// Package api exposes the backtester over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/backtest"
)

// Catalog lists what can be backtested.
type Catalog interface {
	Tickers() []string
	ListTickers() ([]string, error)
	Universes() map[string][]string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ProductionMode bool
	CORSOrigins    []string
	// PublicURL prefixes share links. The request host is used when empty.
	PublicURL string
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	service    *backtest.Service
	catalog    Catalog
	config     ServerConfig
	started    time.Time
}

// NewServer creates a new API server
func NewServer(config ServerConfig, service *backtest.Service, catalog Catalog) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(accessLog())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.CORSOrigins) == 0 || (len(config.CORSOrigins) == 1 && config.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:  router,
		service: service,
		catalog: catalog,
		config:  config,
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/get_tickers", s.handleGetTickers)
		api.GET("/get_stock_universes", s.handleGetUniverses)
		api.POST("/run_backtest", s.handleRunBacktest)
		api.POST("/run_camarilla_mind", s.handleRunMind)
		api.GET("/get_history", s.handleGetHistory)
		api.GET("/get_history_by_id/:id", s.handleGetHistoryByID)
		api.POST("/share_test/:id", s.handleShareTest)
		api.GET("/export_test/:id", s.handleExportTest)
	}

	s.router.GET("/view/:share_uuid", s.handleViewShared)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// messageResponse reports a run that completed without results.
func messageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
