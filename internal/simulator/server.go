package simulator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/logging"
)

// Server exposes a Controller over the backend HTTP API.
type Server struct {
	ctrl    *Controller
	httpLog bool
	latency time.Duration
}

// ServerOptions tune the HTTP layer.
type ServerOptions struct {
	// HTTPLog enables per-request access logging
	HTTPLog bool

	// Latency delays every response, to exercise slow-backend handling
	Latency time.Duration
}

// NewServer creates a server for ctrl.
func NewServer(ctrl *Controller, opts ServerOptions) *Server {
	return &Server{ctrl: ctrl, httpLog: opts.HTTPLog, latency: opts.Latency}
}

// Handler builds the echo router.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			logging.Debug("Simulator request",
				zap.String("request_id", id),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()))
		},
	}))
	if s.latency > 0 {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				select {
				case <-time.After(s.latency):
				case <-c.Request().Context().Done():
					return c.Request().Context().Err()
				}
				return next(c)
			}
		})
	}

	e.GET(backend.PathStatus, s.handleStatus)

	e.POST(backend.PathAlarmOn, s.ok(func() { s.ctrl.SetAlarm(true) }))
	e.POST(backend.PathAlarmOff, s.ok(func() { s.ctrl.SetAlarm(false) }))
	e.POST(backend.PathSystemArm, s.ok(s.ctrl.Arm))
	e.POST(backend.PathSystemDisarm, s.ok(s.ctrl.Disarm))
	e.POST(backend.PathDMSKey, s.handleKey)

	e.POST(backend.PathTimerSet, s.handleTimerSet)
	e.POST(backend.PathTimerConfig, s.handleTimerConfig)
	e.POST(backend.PathTimerAdd, s.ok(s.ctrl.PressTimerButton))

	e.POST(backend.PathRGB, s.handleRGB)

	e.POST(backend.PathScenarioPi1In, s.ok(s.ctrl.ScenarioEntry))
	e.POST(backend.PathScenarioPi1Exit, s.ok(s.ctrl.ScenarioExit))

	return e
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) ok(action func()) echo.HandlerFunc {
	return func(c echo.Context) error {
		action()
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleKey(c echo.Context) error {
	var req backend.KeyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if !s.ctrl.PressKey(req.Key) {
		return echo.NewHTTPError(http.StatusBadRequest, "key must be one of 0-9, * or #")
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleTimerSet(c echo.Context) error {
	var req backend.TimerSetRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	s.ctrl.SetTimer(req.Seconds)
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleTimerConfig(c echo.Context) error {
	var req backend.TimerConfigRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if !s.ctrl.SetAddN(req.AddN) {
		return echo.NewHTTPError(http.StatusBadRequest, "add_n must be positive")
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// rgbRequest accepts either body shape of POST /rgb.
type rgbRequest struct {
	On *bool `json:"on"`
	R  *int  `json:"r"`
	G  *int  `json:"g"`
	B  *int  `json:"b"`
}

func (s *Server) handleRGB(c echo.Context) error {
	var req rgbRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	hasColor := req.R != nil || req.G != nil || req.B != nil
	switch {
	case req.On != nil && hasColor:
		return echo.NewHTTPError(http.StatusBadRequest, "send either on or r/g/b, not both")
	case req.On != nil:
		s.ctrl.SetRGBPower(*req.On)
	case hasColor:
		s.ctrl.SetRGBColor(deref(req.R), deref(req.G), deref(req.B))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "missing on or r/g/b")
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Simulator listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
