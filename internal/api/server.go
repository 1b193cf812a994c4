// Package api exposes the mission registry over HTTP/JSON.
package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/observability"
	"github.com/signalsfoundry/mission-designer/kb"
	"github.com/signalsfoundry/mission-designer/timectrl"
)

// Version is reported by /api/docs.
const Version = "1.0.0"

// Server holds the dependencies shared by every handler.
type Server struct {
	store     *kb.MissionStore
	evaluator *core.Evaluator
	log       logging.Logger
	metrics   *observability.Collector
	evals     *observability.EvaluationCollector
	clock     timectrl.Clock

	engine *gin.Engine
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the base logger for request loggers.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEvaluator sets the evaluator used for automatic evaluations.
func WithEvaluator(ev *core.Evaluator) Option {
	return func(s *Server) {
		if ev != nil {
			s.evaluator = ev
		}
	}
}

// WithMetrics records HTTP request metrics on c.
func WithMetrics(c *observability.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithEvaluationMetrics counts manual evaluations and comparisons on c.
// Automatic evaluations are recorded by the evaluator itself.
func WithEvaluationMetrics(c *observability.EvaluationCollector) Option {
	return func(s *Server) { s.evals = c }
}

// WithClock sets the clock given to missions created over the API.
func WithClock(c timectrl.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewServer builds the gin engine over store.
func NewServer(store *kb.MissionStore, opts ...Option) *Server {
	s := &Server{
		store:     store,
		evaluator: core.NewEvaluator(),
		log:       logging.Noop(),
		clock:     timectrl.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.GinMiddleware())
	}

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.GET("/docs", s.docs)

	missions := api.Group("/missions")
	{
		missions.POST("", s.createMission)
		missions.GET("", s.listMissions)
		missions.GET("/:id", s.getMission)
		missions.PUT("/:id", s.updateMission)
		missions.DELETE("/:id", s.deleteMission)

		missions.POST("/:id/objectives", s.createObjective)
		missions.GET("/:id/objectives", s.listObjectives)
		missions.PUT("/:id/objectives/:oid", s.updateObjective)
		missions.DELETE("/:id/objectives/:oid", s.deleteObjective)

		missions.POST("/:id/requirements", s.createRequirement)
		missions.GET("/:id/requirements", s.listRequirements)
		missions.PUT("/:id/requirements/:rid", s.updateRequirement)
		missions.DELETE("/:id/requirements/:rid", s.deleteRequirement)

		missions.POST("/:id/constraints", s.createConstraint)
		missions.GET("/:id/constraints", s.listConstraints)
		missions.PUT("/:id/constraints/:cid", s.updateConstraint)
		missions.DELETE("/:id/constraints/:cid", s.deleteConstraint)

		missions.POST("/:id/solutions", s.createSolution)
		missions.GET("/:id/solutions", s.listSolutions)
		missions.GET("/:id/solutions/:sid", s.getSolution)
		missions.PUT("/:id/solutions/:sid", s.updateSolution)
		missions.DELETE("/:id/solutions/:sid", s.deleteSolution)
		missions.POST("/:id/solutions/:sid/evaluate", s.evaluateSolution)
		missions.GET("/:id/solutions/:sid/evaluation", s.getEvaluation)

		missions.POST("/:id/iterations", s.createIteration)
		missions.GET("/:id/iterations", s.listIterations)

		missions.POST("/:id/select-solution/:sid", s.selectSolution)
		missions.POST("/:id/baseline-solution/:sid", s.baselineSolution)
		missions.POST("/:id/reject-solution/:sid", s.rejectSolution)
		missions.POST("/:id/compare", s.compareSolutions)
	}
	return r
}

// HealthStatus is the body of /api/health.
type HealthStatus struct {
	Status        string    `json:"status"`
	MissionsCount int       `json:"missions_count"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:        "healthy",
		MissionsCount: s.store.Len(),
		Timestamp:     s.clock.Now(),
	})
}

// Endpoint is one row of the /api/docs listing.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Docs is the body of /api/docs.
type Docs struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Endpoints []Endpoint `json:"endpoints"`
}

func (s *Server) docs(c *gin.Context) {
	routes := s.engine.Routes()
	endpoints := make([]Endpoint, 0, len(routes))
	for _, r := range routes {
		endpoints = append(endpoints, Endpoint{Method: r.Method, Path: r.Path})
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	c.JSON(http.StatusOK, Docs{
		Name:      "Mission Design Evaluation API",
		Version:   Version,
		Endpoints: endpoints,
	})
}
