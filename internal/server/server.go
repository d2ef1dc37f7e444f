// Package server exposes read-only planning data over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	recommenddto "quotawin/internal/modules/recommend/dto"
	recommendin "quotawin/internal/modules/recommend/port/in"
	scheduledto "quotawin/internal/modules/schedule/dto"
	schedulein "quotawin/internal/modules/schedule/port/in"
	usagedto "quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
	apperrors "quotawin/internal/platform/errors"
)

const (
	defaultHistoryDays = 7
	shutdownTimeout    = 5 * time.Second
)

type Options struct {
	Addr      string
	Usage     usagein.Usecase
	Schedule  schedulein.Usecase
	Recommend recommendin.Usecase
	Logger    zerolog.Logger
	// Registry defaults to a fresh registry so tests never share collectors.
	Registry *prometheus.Registry
}

type Server struct {
	addr      string
	engine    *gin.Engine
	usage     usagein.Usecase
	schedule  schedulein.Usecase
	recommend recommendin.Usecase
	metrics   *metrics
	logger    zerolog.Logger
}

func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		addr:      opts.Addr,
		engine:    gin.New(),
		usage:     opts.Usage,
		schedule:  opts.Schedule,
		recommend: opts.Recommend,
		metrics:   newMetrics(reg),
		logger:    opts.Logger.With().Str("component", "server").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.metrics.middleware(), s.requestLogger())
	s.routes(reg)
	return s
}

func (s *Server) routes(reg *prometheus.Registry) {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		api.GET("/recommendation", s.handleRecommendation)
		api.GET("/week", s.handleWeek)
		api.GET("/schedule", s.handleSchedule)
		api.GET("/history", s.handleHistory)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

func (s *Server) handleRecommendation(c *gin.Context) {
	days, ok := s.queryDays(c, 0)
	if !ok {
		return
	}
	out, err := s.recommend.Recommend(c.Request.Context(), recommenddto.RecommendInput{Days: days})
	if err != nil {
		s.fail(c, err)
		return
	}
	if out.Available {
		s.metrics.confidence.Set(out.Confidence)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleWeek(c *gin.Context) {
	days, ok := s.queryDays(c, 0)
	if !ok {
		return
	}
	out, err := s.recommend.Week(c.Request.Context(), recommenddto.WeekInput{Days: days})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSchedule(c *gin.Context) {
	out, err := s.schedule.Plan(c.Request.Context(), scheduledto.PlanInput{Start: c.Query("start"), End: c.Query("end")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHistory(c *gin.Context) {
	days, ok := s.queryDays(c, defaultHistoryDays)
	if !ok {
		return
	}
	out, err := s.usage.History(c.Request.Context(), usagedto.HistoryInput{Days: days})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}

func (s *Server) queryDays(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > usagedto.MaxHistoryDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("days must be an integer in [1, %d]", usagedto.MaxHistoryDays)})
		return 0, false
	}
	return days, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	}
}
