package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

func (s *Server) listAlerts(c *gin.Context) {
	var alerts []*api.Alert
	if s.monitor != nil {
		alerts = s.monitor.Alerts()
	}
	c.JSON(http.StatusOK, api.AlertsListResponse{
		Alerts: alerts,
		Count:  len(alerts),
	})
}

func (s *Server) acknowledgeAlert(c *gin.Context) {
	id := api.AlertID(c.Param("alertID"))
	if s.monitor == nil || !s.monitor.Acknowledge(id) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("alert not found: %s", id),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Alert acknowledged"})
}

func (s *Server) executionMetrics(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusOK, api.ExecutionMetrics{})
		return
	}
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.monitor.Metrics(from, to))
}

func (s *Server) subjectEngagement(c *gin.Context) {
	var engagement []*api.SubjectEngagement
	if s.monitor != nil {
		engagement = s.monitor.Engagement()
	}
	c.JSON(http.StatusOK, gin.H{
		"engagement": engagement,
		"count":      len(engagement),
	})
}

func (s *Server) analyticsReport(c *gin.Context) {
	window := api.ReportWindow(c.Param("window"))
	switch window {
	case api.WindowDaily, api.WindowWeekly, api.WindowMonthly:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid report window %q", window),
			Status: http.StatusBadRequest,
		})
		return
	}
	if s.monitor == nil {
		c.JSON(http.StatusOK, &api.AnalyticsReport{Window: window})
		return
	}
	c.JSON(http.StatusOK, s.monitor.Report(window))
}

func (s *Server) queryAudit(c *gin.Context) {
	if s.audit == nil {
		c.JSON(http.StatusOK, api.AuditListResponse{})
		return
	}

	filter := &api.AuditFilter{
		ExecutionID: api.ExecutionID(c.Query("execution_id")),
		Kind:        api.AuditKind(c.Query("kind")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:  fmt.Sprintf("invalid limit %q", raw),
				Status: http.StatusBadRequest,
			})
			return
		}
		filter.Limit = limit
	}
	var ok bool
	if filter.From, ok = parseTimeQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = parseTimeQuery(c, "to"); !ok {
		return
	}

	entries, err := s.audit.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, api.AuditListResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// parseTimeQuery reads an optional RFC 3339 query parameter. The second
// return is false when the request was already answered with an error.
func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid %s timestamp %q", name, raw),
			Status: http.StatusBadRequest,
		})
		return time.Time{}, false
	}
	return at, true
}
