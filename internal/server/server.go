// Package server exposes the orchestration engine over HTTP: event
// ingestion, trigger and workflow registration, execution control,
// analytics, and a websocket event stream.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/monitor"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/store"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/util"
)

// Server implements the HTTP API for the orchestration engine
type Server struct {
	engine  *engine.Engine
	monitor *monitor.Monitor
	audit   store.AuditStore
	sockets util.Set[*Client]
	mu      sync.Mutex
}

var ErrInvalidJSON = errors.New("invalid JSON request")

// NewServer creates a new HTTP API server. The monitor and audit store
// may be nil; the routes they back then report empty results.
func NewServer(
	eng *engine.Engine, mon *monitor.Monitor, audit store.AuditStore,
) *Server {
	return &Server{
		engine:  eng,
		monitor: mon,
		audit:   audit,
		sockets: util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	// Event ingestion
	router.POST("/events", s.submitEvent)

	// Trigger endpoints
	router.GET("/triggers", s.listTriggers)
	router.POST("/triggers", s.createTrigger)
	router.GET("/triggers/:triggerID", s.getTrigger)
	router.PUT("/triggers/:triggerID/status", s.setTriggerStatus)

	// Workflow endpoints
	router.GET("/workflows", s.listWorkflows)
	router.POST("/workflows", s.createWorkflow)
	router.GET("/workflows/:workflowID", s.getWorkflow)
	router.POST("/workflows/:workflowID/start", s.startWorkflow)

	// Execution endpoints
	router.GET("/executions", s.listExecutions)
	router.GET("/executions/:executionID", s.getExecution)
	router.POST("/executions/:executionID/pause", s.pauseExecution)
	router.POST("/executions/:executionID/resume", s.resumeExecution)
	router.POST("/executions/:executionID/cancel", s.cancelExecution)

	// Monitoring and analytics
	router.GET("/alerts", s.listAlerts)
	router.POST("/alerts/:alertID/ack", s.acknowledgeAlert)
	router.GET("/analytics/metrics", s.executionMetrics)
	router.GET("/analytics/engagement", s.subjectEngagement)
	router.GET("/analytics/reports/:window", s.analyticsReport)
	router.GET("/audit", s.queryAudit)

	// WebSocket
	router.GET("/ws", s.handleWebSocket)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service:          "careflow",
		Version:          "1.0.0",
		Status:           "healthy",
		ActiveExecutions: s.engine.ActiveCount(),
		StoreConnected:   s.audit != nil,
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections.
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
