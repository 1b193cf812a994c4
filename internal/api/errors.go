package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/kb"
)

var (
	// ErrBadRequest marks malformed request bodies and query parameters.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound is returned for unknown objectives, requirements,
	// constraints and evaluations.
	ErrNotFound = errors.New("not found")
)

// statusFromError maps domain errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), core.IsConstructionError(err):
		return http.StatusBadRequest
	case errors.Is(err, kb.ErrMissionNotFound),
		errors.Is(err, core.ErrSolutionNotFound),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, kb.ErrMissionExists),
		errors.Is(err, core.ErrSolutionExists),
		errors.Is(err, core.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {"error": ...} with the mapped status. Server side
// failures are logged on the request logger.
func abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.LoggerFromContext(ctx).Error(ctx, "request failed",
			logging.String("path", c.FullPath()),
			logging.Err(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
