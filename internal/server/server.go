package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/core"
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/logging"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Client   compute.Client
	Recorder core.RunRecorder
	Fetch    core.FetchFunc
	Logger   *zap.Logger
}

type Server struct {
	cfg      *config.Config
	client   compute.Client
	recorder core.RunRecorder
	fetch    core.FetchFunc
	logger   *zap.Logger
	Sessions *SessionStore
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		cfg:      cfg,
		client:   deps.Client,
		recorder: deps.Recorder,
		fetch:    deps.Fetch,
		logger:   logging.Or(deps.Logger).Named("server"),
		Sessions: NewSessionStore(cfg.Server.SessionTTL.Std()),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.Health)
	r.GET("/micro", s.Micro)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/sessions", s.CreateSession)
	sess := r.Group("/sessions/:id", s.loadSession)
	{
		sess.GET("", s.GetSession)
		sess.DELETE("", s.DeleteSession)
		sess.POST("/archive", s.UploadArchive)
		sess.PUT("/selection", s.SelectGalaxy)
		sess.GET("/galaxies", s.ListGalaxies)
		sess.GET("/galaxies/:name", s.GetGalaxy)
		sess.GET("/galaxies/:name/runs", s.GalaxyRuns)
		sess.POST("/galaxies/:name/compute", s.ComputeGalaxy)
		sess.POST("/global", s.aggregateHandler(model.AggregateGlobal))
		sess.POST("/dwarfs", s.aggregateHandler(model.AggregateDwarfs))
		sess.GET("/export.csv", s.ExportCSV)
		sess.GET("/chart.png", s.ExportPNG)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// newSession builds an empty session with its own catalog.
func (s *Server) newSession() (*core.Session, error) {
	cat, err := core.NewCatalog(s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	return core.NewSession(cat, s.client, core.Options{
		Recorder: s.recorder,
		Fetch:    s.fetch,
		Logger:   s.logger,
	}), nil
}

// Preload creates a session filled from the configured autoload sources.
// It is how the server starts with data already in place.
func (s *Server) Preload(ctx context.Context) (*core.Session, error) {
	sess, err := s.newSession()
	if err != nil {
		return nil, err
	}
	if _, err := sess.Autoload(ctx, s.cfg.Archive.Autoload); err != nil {
		return nil, err
	}
	s.Sessions.Add(sess)
	return sess, nil
}
