package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/core"
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/present"
)

const sessionKey = "session"

func (s *Server) loadSession(c *gin.Context) {
	sess, ok := s.Sessions.Get(c.Param("id"))
	if !ok {
		s.writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
		c.Abort()
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *core.Session {
	return c.MustGet(sessionKey).(*core.Session)
}

func (s *Server) Health(c *gin.Context) {
	ok, err := s.client.Health(c.Request.Context())
	resp := gin.H{"ok": true, "backend": ok}
	if err != nil {
		resp["backend_error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Micro(c *gin.Context) {
	m, err := s.client.Micro(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type CreateSessionRequest struct {
	// Source is an http(s) URL, or one of the configured autoload paths, to
	// load instead of the whole autoload list.
	Source string `json:"source"`
}

// allowedSource keeps clients from reading arbitrary server-local files.
func (s *Server) allowedSource(src string) bool {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return true
	}
	for _, a := range s.cfg.Archive.Autoload {
		if a == src {
			return true
		}
	}
	return false
}

func (s *Server) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}
	if req.Source != "" && !s.allowedSource(req.Source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be an http(s) URL or a configured autoload path"})
		return
	}

	sess, err := s.newSession()
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{"id": sess.ID}
	switch {
	case req.Source != "":
		report, err := sess.Autoload(c.Request.Context(), []string{req.Source})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp["report"] = report
	case len(s.cfg.Archive.Autoload) > 0:
		report, err := sess.Autoload(c.Request.Context(), s.cfg.Archive.Autoload)
		if err != nil {
			// the session is still usable through uploads
			resp["autoload_error"] = err.Error()
		} else {
			resp["report"] = report
		}
	}

	if n := s.Sessions.Add(sess); n > 0 {
		s.logger.Info("evicted idle sessions", zap.Int("count", n))
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetSession(c *gin.Context) {
	sess := session(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       sess.ID,
		"selected": sess.Selected(),
		"count":    sess.Catalog().Len(),
		"report":   sess.Report(),
		"last":     sess.Last(),
	})
}

func (s *Server) DeleteSession(c *gin.Context) {
	s.Sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// UploadArchive accepts a multipart "file" field or the raw archive as body.
func (s *Server) UploadArchive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	label := "upload"
	var data []byte
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			s.writeError(c, err)
			return
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			s.writeError(c, err)
			return
		}
		label = fh.Filename
	} else {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(c, err)
			return
		}
		if data, err = io.ReadAll(c.Request.Body); err != nil {
			s.writeError(c, err)
			return
		}
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty archive upload"})
		return
	}

	report, err := session(c).LoadArchive(c.Request.Context(), label, data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type SelectRequest struct {
	Galaxy string `json:"galaxy" binding:"required"`
}

func (s *Server) SelectGalaxy(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	e, err := session(c).Select(req.Galaxy)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": e.Name, "observed": present.Observed(*e)})
}

func (s *Server) ListGalaxies(c *gin.Context) {
	names := session(c).Catalog().List()
	c.JSON(http.StatusOK, gin.H{"galaxies": names, "count": len(names)})
}

// GetGalaxy returns a galaxy's rows, as JSON or with ?format=csv.
func (s *Server) GetGalaxy(c *gin.Context) {
	e, err := session(c).Catalog().Get(c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := present.WriteRowsCSV(&buf, *e); err != nil {
			s.writeError(c, err)
			return
		}
		attachment(c, e.Name+"_rows.csv", "text/csv", buf.Bytes())
		return
	}
	c.JSON(http.StatusOK, gin.H{"galaxy": e, "observed": present.Observed(*e)})
}

func (s *Server) GalaxyRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := session(c).History(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) ComputeGalaxy(c *gin.Context) {
	res, err := session(c).RunGalaxy(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	obs, pred := present.Curve(res)
	c.JSON(http.StatusOK, gin.H{"result": res, "observed": obs, "predicted": pred})
}

func (s *Server) aggregateHandler(kind model.AggregateKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := session(c).RunAggregate(c.Request.Context(), kind)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": res, "bars": present.Bars(res)})
	}
}

func (s *Server) ExportCSV(c *gin.Context) {
	last := session(c).Last()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result to export"})
		return
	}

	var buf bytes.Buffer
	var name string
	var err error
	switch last.Kind {
	case model.KindGalaxy:
		name = last.Galaxy.Galaxy + "_curve.csv"
		err = present.WriteCurveCSV(&buf, last.Galaxy)
	default:
		name = last.Aggregate.Label + "_rms.csv"
		err = present.WriteAggregateCSV(&buf, last.Aggregate)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	attachment(c, name, "text/csv", buf.Bytes())
}

func (s *Server) ExportPNG(c *gin.Context) {
	last := session(c).Last()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result to export"})
		return
	}

	var buf bytes.Buffer
	var name string
	var err error
	switch last.Kind {
	case model.KindGalaxy:
		name = last.Galaxy.Galaxy + ".png"
		err = present.RenderCurvePNG(&buf, last.Galaxy)
	default:
		name = last.Aggregate.Label + ".png"
		err = present.RenderAggregatePNG(&buf, last.Aggregate)
	}
	if errors.Is(err, present.ErrNothingToPlot) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	attachment(c, name, "image/png", buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
