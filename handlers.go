package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perio_dictation/internal/voice"
)

// server bundles the state the HTTP handlers need.
type server struct {
	cfg      *Config
	cache    *ProfileCache
	sessions *SessionStore
	metrics  *Metrics
}

// newEcho builds the HTTP router.
func newEcho(s *server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	e.POST("/parse", s.handleParse)
	e.GET("/parse", s.handleParse)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Dictation sessions
	e.POST("/sessions", s.handleCreateSession)
	e.GET("/sessions/:id", s.handleGetSession)
	e.DELETE("/sessions/:id", s.handleDeleteSession)
	e.POST("/sessions/:id/utterances", s.handleUtterance)

	// Admin endpoints for manual reload
	e.POST("/admin/reload/:clinic", s.handleReloadClinic)
	e.POST("/admin/reload-all", s.handleReloadAll)
	e.GET("/admin/cache-info", s.handleCacheInfo)

	return e
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func (s *server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"timestamp":       time.Now(),
		"auto_reload":     s.cache.watcher != nil,
		"active_sessions": s.sessions.Len(),
	})
}

func (s *server) handleCacheInfo(c echo.Context) error {
	clinics := make([]map[string]interface{}, 0)
	for clinic, profile := range s.cache.Snapshot() {
		th := profile.parser.Thresholds()
		clinics = append(clinics, map[string]interface{}{
			"clinic":         clinic,
			"loaded_at":      profile.loadedAt,
			"file_path":      profile.filePath,
			"extra_triggers": profile.extraTriggerCounts(),
			"thresholds":     th,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cached_clinics": len(clinics),
		"clinics":        clinics,
		"timestamp":      time.Now(),
	})
}

func (s *server) handleReloadClinic(c echo.Context) error {
	clinic := c.Param("clinic")
	s.cache.Invalidate(clinic)

	return c.JSON(http.StatusOK, ReloadResponse{
		Message:    fmt.Sprintf("Clinic '%s' cache cleared and will reload on next request", clinic),
		Clinic:     clinic,
		ReloadedAt: time.Now(),
	})
}

func (s *server) handleReloadAll(c echo.Context) error {
	count := s.cache.InvalidateAll()

	return c.JSON(http.StatusOK, ReloadResponse{
		Message:    fmt.Sprintf("All %d clinic caches cleared and will reload on next request", count),
		ReloadedAt: time.Now(),
	})
}

func (s *server) handleParse(c echo.Context) error {
	var req ParseRequest

	// Bind request (works for both POST JSON and GET query params)
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Confidence == nil && c.QueryParam("confidence") != "" {
		f, err := strconv.ParseFloat(c.QueryParam("confidence"), 64)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "confidence must be a number")
		}
		req.Confidence = &f
	}

	if req.Transcript == "" || req.Mode == "" {
		return errorJSON(c, http.StatusBadRequest, "transcript and mode are required")
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "Invalid mode. Must be pocket_depth, bleeding or mobility")
	}
	confidence, err := s.confidence(req.Confidence)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	profile, err := s.cache.Get(req.Clinic)
	if err != nil {
		return s.profileError(c, req.Clinic, err)
	}

	start := time.Now()
	data := profile.Parse(req.Transcript, mode, confidence)
	s.metrics.RecordParse(c.Request().Context(), data, time.Since(start))

	return c.JSON(http.StatusOK, ParseResponse{ParsedVoiceData: data, Clinic: req.Clinic})
}

func (s *server) handleCreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request")
	}

	mode := voice.ModePocketDepth
	if req.Mode != "" {
		m, ok := parseMode(req.Mode)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "Invalid mode. Must be pocket_depth, bleeding or mobility")
		}
		mode = m
	}
	// Fail early on an unknown clinic rather than on the first utterance.
	if _, err := s.cache.Get(req.Clinic); err != nil {
		return s.profileError(c, req.Clinic, err)
	}

	session := s.sessions.Create(c.Request().Context(), req.Clinic, mode)
	return c.JSON(http.StatusCreated, session.Info())
}

func (s *server) handleGetSession(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, session.Info())
}

func (s *server) handleDeleteSession(c echo.Context) error {
	if err := s.sessions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return errorJSON(c, http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) handleUtterance(c echo.Context) error {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, err.Error())
	}

	var req UtteranceRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Transcript == "" {
		return errorJSON(c, http.StatusBadRequest, "transcript is required")
	}
	confidence, err := s.confidence(req.Confidence)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	clinic := session.Info().Clinic
	profile, err := s.cache.Get(clinic)
	if err != nil {
		return s.profileError(c, clinic, err)
	}

	start := time.Now()
	data := session.Apply(profile, req.Transcript, confidence, time.Now())
	s.metrics.RecordParse(c.Request().Context(), data, time.Since(start))

	return c.JSON(http.StatusOK, UtteranceResponse{
		ParseResponse: ParseResponse{ParsedVoiceData: data, Clinic: clinic},
		Session:       session.Info(),
	})
}

// confidence applies the configured default and checks the range.
func (s *server) confidence(c *float64) (float64, error) {
	if c == nil {
		return s.cfg.Parser.DefaultConfidence, nil
	}
	if *c < 0 || *c > 1 {
		return 0, fmt.Errorf("confidence %.2f is out of range [0, 1]", *c)
	}
	return *c, nil
}

func (s *server) profileError(c echo.Context, clinic string, err error) error {
	switch {
	case errors.Is(err, errInvalidClinic):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errClinicNotFound):
		return errorJSON(c, http.StatusNotFound, fmt.Sprintf("Clinic not found: %s", clinic))
	}
	c.Logger().Errorf("loading clinic %s: %v", clinic, err)
	return errorJSON(c, http.StatusInternalServerError, "failed to load clinic vocabulary")
}
