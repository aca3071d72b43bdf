// Package server exposes health, metrics and stored signal state over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/state"
)

// Server wraps an Echo instance serving the status API.
type Server struct {
	echo  *echo.Echo
	addr  string
	store state.Store
	log   zerolog.Logger
}

// New creates a Server. gatherer may be nil, in which case /metrics is not registered.
func New(addr string, store state.Store, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{echo: e, addr: addr, store: store, log: log.With().Str("component", "server").Logger()}
	e.Use(recoverMiddleware(s.log), requestLogging(s.log))

	e.GET("/healthz", s.health)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	api := e.Group("/api/v1")
	api.GET("/state", s.getState)
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("status server listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type stateResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// getState returns one key when ?symbol= (or ?key=) is set, otherwise every record.
func (s *Server) getState(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.QueryParam("key")
	if key == "" {
		key = c.QueryParam("symbol")
	}

	if key == "" {
		l, ok := s.store.(state.Lister)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "symbol is required for this state backend")
		}
		records, err := l.List(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("list state")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "state store unavailable")
		}
		return c.JSON(http.StatusOK, records)
	}

	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("get state")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "state store unavailable")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "no state for "+key)
	}
	return c.JSON(http.StatusOK, stateResponse{Key: key, Value: value})
}
