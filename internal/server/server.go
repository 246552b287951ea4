// Package server exposes the enrollment and verification surface over
// HTTP for administrative use.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voicegate/voicegate/internal/audio"
	"github.com/voicegate/voicegate/internal/speaker"
)

// Server wraps the speaker service behind a gin router.
type Server struct {
	svc    *speaker.Service
	log    zerolog.Logger
	engine *gin.Engine
}

// New creates a Server with its routes registered.
func New(svc *speaker.Service, log zerolog.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log.With().Str("component", "server").Logger(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	v1 := engine.Group("/api/v1")
	v1.POST("/enroll", s.handleEnroll)
	v1.POST("/verify", s.handleVerify)
	v1.GET("/profiles/:user_id", s.handleHasProfile)

	s.engine = engine
	return s
}

// Handler returns the underlying HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr and blocks until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("admin API listening")
	return s.engine.Run(addr)
}

type enrollRequest struct {
	UserID      string   `json:"user_id" binding:"required"`
	SamplePaths []string `json:"sample_paths" binding:"required"`
}

type verifyRequest struct {
	UserID     string    `json:"user_id" binding:"required"`
	Samples    []float32 `json:"samples" binding:"required"`
	SampleRate int       `json:"sample_rate" binding:"required"`
}

func (s *Server) handleEnroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := s.svc.EnrollFiles(c.Request.Context(), req.UserID, req.SamplePaths)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", req.UserID).Msg("enrollment rejected")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seg := audio.Segment{Samples: req.Samples, SampleRate: req.SampleRate}
	result, err := s.svc.Verify(c.Request.Context(), req.UserID, seg)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", req.UserID).Msg("verification failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHasProfile(c *gin.Context) {
	userID := c.Param("user_id")

	ok, err := s.svc.HasProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "has_profile": ok})
}

// statusFor maps pipeline error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, speaker.ErrInsufficientSamples),
		errors.Is(err, speaker.ErrSampleTooShort),
		errors.Is(err, speaker.ErrUnreadableSample):
		return http.StatusBadRequest
	case errors.Is(err, speaker.ErrEmbeddingProvider):
		return http.StatusBadGateway
	case errors.Is(err, speaker.ErrProfileStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
