package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/backtest"
	"CamarillaBacktester/internal/model"
	"CamarillaBacktester/internal/recorder"
)

// handleHealth reports liveness.
// GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"tickers": len(s.catalog.Tickers()),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// GET /api/get_tickers
func (s *Server) handleGetTickers(c *gin.Context) {
	tickers, err := s.catalog.ListTickers()
	if err != nil {
		log.Warn().Err(err).Msg("listing tickers failed, serving cached list")
		tickers = s.catalog.Tickers()
	}
	sort.Strings(tickers)
	if tickers == nil {
		tickers = []string{}
	}
	c.JSON(http.StatusOK, tickers)
}

// GET /api/get_stock_universes
func (s *Server) handleGetUniverses(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Universes())
}

// handleRunBacktest runs a pattern against one ticker.
// POST /api/run_backtest
func (s *Server) handleRunBacktest(c *gin.Context) {
	var req backtest.SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, _, err := s.service.RunSingle(c.Request.Context(), req)
	if errors.Is(err, backtest.ErrNoMatches) {
		messageResponse(c, fmt.Sprintf("No historical instances found for %s.", strings.TrimSpace(req.Ticker)))
		return
	}
	if err != nil {
		s.runError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleRunMind runs a pattern across a universe.
// POST /api/run_camarilla_mind
func (s *Server) handleRunMind(c *gin.Context) {
	var req backtest.MindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, _, err := s.service.RunMind(c.Request.Context(), req)
	if errors.Is(err, backtest.ErrNoMatches) {
		messageResponse(c, fmt.Sprintf("No historical matches found in the '%s' universe.", req.Universe))
		return
	}
	if err != nil {
		s.runError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) runError(c *gin.Context, err error) {
	if errors.Is(err, backtest.ErrInvalidRequest) {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Error(err)
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("backtest failed")
	errorResponse(c, http.StatusInternalServerError, "An internal server error occurred: "+err.Error())
}

// GET /api/get_history
func (s *Server) handleGetHistory(c *gin.Context) {
	list, err := s.service.History(c.Request.Context())
	if err != nil {
		c.Error(err)
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*model.Backtest{}
	}
	c.JSON(http.StatusOK, list)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid test id")
		return 0, false
	}
	return id, true
}

// lookupError writes the response for a failed stored-run lookup.
func lookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, recorder.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, notFound)
		return
	}
	c.Error(err)
	errorResponse(c, http.StatusInternalServerError, err.Error())
}

// GET /api/get_history_by_id/:id
func (s *Server) handleGetHistoryByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		lookupError(c, err, "Test not found")
		return
	}
	c.JSON(http.StatusOK, b)
}

// handleShareTest publishes a stored run under a share link.
// POST /api/share_test/:id
func (s *Server) handleShareTest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	shareID, err := s.service.Share(c.Request.Context(), id)
	if err != nil {
		lookupError(c, err, "Test not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_url": s.baseURL(c) + "/view/" + shareID})
}

func (s *Server) baseURL(c *gin.Context) string {
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// GET /api/export_test/:id
func (s *Server) handleExportTest(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	data, filename, err := s.service.Export(c.Request.Context(), id)
	if err != nil {
		lookupError(c, err, "Test not found")
		return
	}
	c.Header("Content-Disposition", "attachment;filename="+filename)
	c.Data(http.StatusOK, "application/json", data)
}

// GET /view/:share_uuid
func (s *Server) handleViewShared(c *gin.Context) {
	b, err := s.service.Shared(c.Request.Context(), c.Param("share_uuid"))
	if err != nil {
		lookupError(c, err, "Test not found or not shared.")
		return
	}
	c.JSON(http.StatusOK, b)
}
