package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/core"
	"github.com/agenthands/rotcurve/internal/core/catalog"
	"github.com/agenthands/rotcurve/internal/core/table"
)

var errSessionNotFound = errors.New("session not found")

// writeError maps pipeline errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		formatErr  *archive.FormatError
		emptyErr   *table.EmptyError
		missingErr *table.MissingColumnError
		remoteErr  *compute.RemoteCallError
		shapeErr   *compute.ResponseShapeError
		tooBig     *http.MaxBytesError
	)

	switch {
	case errors.As(err, &formatErr), errors.As(err, &emptyErr), errors.As(err, &missingErr),
		errors.Is(err, core.ErrNoSelection), errors.Is(err, core.ErrEmptyCatalog):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, errSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  err.Error(),
			"status": remoteErr.StatusCode,
			"body":   remoteErr.Body,
		})
	case errors.As(err, &shapeErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "response_shape"})
	case errors.As(err, &tooBig):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.JSON(499, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
