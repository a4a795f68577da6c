// Package server exposes the scoring pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/db"
	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/score"
	"github.com/gyeh/readmitrisk/internal/source"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Source  source.Source
	Forest  *forest.Forest
	Options score.Options
	// Pool is optional. When set, saved scores and discharge plans can be
	// queried and created and, with Save, every scoring run is persisted.
	Pool *pgxpool.Pool
	Save bool
	Port int
}

// Server is the HTTP front end.
type Server struct {
	e    *echo.Echo
	deps Deps
	log  zerolog.Logger
}

// New builds the echo instance and registers all routes.
func New(deps Deps, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Recovery sits inside Logger so a recovered panic still gets its
	// request line.
	e.Use(echomw.RequestID())
	e.Use(Logger(log))
	e.Use(Recovery(log))

	s := &Server{e: e, deps: deps, log: log}

	e.GET("/", s.root)
	e.GET("/health", s.health)

	v1 := e.Group("/v1")
	v1.GET("/score", s.score)
	v1.POST("/score", s.score)
	v1.GET("/records", s.records)
	v1.GET("/get-records", s.records)
	if deps.Pool != nil {
		v1.GET("/scores/latest", s.latest)
		v1.POST("/plan", s.plan)
		v1.GET("/processed", s.processed)
		v1.GET("/distributions/:field", s.distribution)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.e.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) root(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("I am a readmission risk scorer running on port %d.\n", s.deps.Port))
}

func (s *Server) health(c echo.Context) error {
	body := map[string]any{
		"status":        "ok",
		"trees":         s.deps.Forest.NumTrees(),
		"forest_sha256": s.deps.Forest.SHA256(),
	}
	if s.deps.Pool != nil {
		if err := db.Health(c.Request().Context(), s.deps.Pool); err != nil {
			s.log.Warn().Err(err).Msg("health check: database unreachable")
			body["status"] = "degraded"
			body["database"] = "unreachable"
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		body["database"] = "ok"
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) score(c echo.Context) error {
	ids, err := requestIDs(c)
	if err != nil {
		return s.fail(c, err)
	}
	res, err := s.run(c, ids)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, res.Response)
}

func (s *Server) records(c echo.Context) error {
	ids, err := requestIDs(c)
	if err != nil {
		return s.fail(c, err)
	}
	res, err := s.run(c, ids)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, BuildRecords(res.Scored))
}

func (s *Server) latest(c echo.Context) error {
	ids, err := requestIDs(c)
	if err != nil {
		return s.fail(c, err)
	}
	saved, err := score.Latest(c.Request().Context(), s.deps.Pool, ids)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

// planResponse reports a saved discharge plan.
type planResponse struct {
	RunID      string         `json:"run_id"`
	SampleSize int            `json:"sample_size"`
	Population int            `json:"population"`
	Saved      int64          `json:"saved"`
	Scores     score.Response `json:"scores"`
}

// errNotListable is returned when the configured source cannot enumerate
// its admissions.
var errNotListable = errors.New("source cannot list admissions")

func (s *Server) plan(c echo.Context) error {
	n := score.DefaultSampleSize
	if v := c.QueryParam("sample"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return s.fail(c, fmt.Errorf("%w: %q", score.ErrInvalidSample, v))
		}
		n = parsed
	}
	pop, ok := s.deps.Source.(source.Population)
	if !ok {
		return s.fail(c, errNotListable)
	}

	ctx := c.Request().Context()
	log := s.log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
	plan, err := score.Plan(ctx, pop, s.deps.Forest, n, nil, s.deps.Options, log)
	if err != nil {
		return s.fail(c, err)
	}
	saved, err := score.SavePlan(ctx, s.deps.Pool, plan, log)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, planResponse{
		RunID:      plan.RunID.String(),
		SampleSize: plan.SampleSize,
		Population: plan.Population,
		Saved:      saved,
		Scores:     plan.Response,
	})
}

func (s *Server) processed(c echo.Context) error {
	p, err := score.LatestProcessed(c.Request().Context(), s.deps.Pool)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) distribution(c echo.Context) error {
	field := c.Param("field")
	if err := score.CheckField(field); err != nil {
		return s.fail(c, err)
	}
	p, err := score.LatestProcessed(c.Request().Context(), s.deps.Pool)
	if err != nil {
		return s.fail(c, err)
	}
	d, err := score.Distribute(field, p)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) run(c echo.Context, ids []int64) (*score.Result, error) {
	ctx := c.Request().Context()
	log := s.log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()

	res, err := score.Run(ctx, s.deps.Source, s.deps.Forest, ids, s.deps.Options, log)
	if err != nil {
		return nil, err
	}
	if s.deps.Save && s.deps.Pool != nil && len(res.Scored) > 0 {
		if _, err := score.Save(ctx, s.deps.Pool, res, log); err != nil {
			log.Warn().Err(err).Msg("saving scores failed (non-fatal)")
		}
	}
	return res, nil
}

// idsBody is the accepted POST body when it is not a bare array.
type idsBody struct {
	IDs []int64 `json:"ids"`
}

// requestIDs reads ids from the data, ids or admissionIDs query parameter, or
// from a JSON body holding either an array or {"ids": [...]}.
func requestIDs(c echo.Context) ([]int64, error) {
	for _, name := range []string{"data", "ids", "admissionIDs"} {
		if v := c.QueryParam(name); v != "" {
			return score.ParseIDs(v)
		}
	}
	if c.Request().Method != http.MethodPost {
		return []int64{}, nil
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", score.ErrInvalidIDs, err)
	}
	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		var wrapped idsBody
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", score.ErrInvalidIDs, err)
		}
		ids = wrapped.IDs
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, score.CheckIDs(ids)
}

// StatusFor maps a pipeline error to an HTTP status.
func StatusFor(err error) int {
	var missing *score.MissingIDsError
	switch {
	case errors.Is(err, score.ErrInvalidIDs),
		errors.Is(err, score.ErrInvalidSample),
		errors.Is(err, score.ErrUnknownField):
		return http.StatusBadRequest
	case errors.As(err, &missing),
		errors.Is(err, score.ErrNoPlan),
		errors.Is(err, score.ErrEmptyPopulation):
		return http.StatusNotFound
	case errors.Is(err, errNotListable):
		return http.StatusNotImplemented
	case errors.Is(err, score.ErrMissingSource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	status := StatusFor(err)
	evt := s.log.Warn()
	if status >= http.StatusInternalServerError {
		evt = s.log.Error()
	}
	var pe *score.PipelineError
	if errors.As(err, &pe) {
		evt = evt.Str("phase", pe.Phase)
	}
	evt.Err(err).Int("status", status).Msg("request failed")
	return c.JSON(status, map[string]string{"error": err.Error()})
}
