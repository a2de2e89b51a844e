package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

func (s *Server) listExecutions(c *gin.Context) {
	filter := &engine.ExecutionFilter{
		State:      api.ExecState(c.Query("state")),
		WorkflowID: api.WorkflowID(c.Query("workflow_id")),
		SubjectID:  api.SubjectID(c.Query("subject_id")),
	}

	execs := s.engine.ListExecutions(filter)
	statuses := make([]*api.ExecutionStatus, len(execs))
	for i, x := range execs {
		statuses[i] = x.Status()
	}
	c.JSON(http.StatusOK, api.ExecutionsListResponse{
		Executions: statuses,
		Count:      len(statuses),
	})
}

func (s *Server) getExecution(c *gin.Context) {
	id := api.ExecutionID(c.Param("executionID"))
	x, err := s.engine.GetExecution(id)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, x)
}

func (s *Server) pauseExecution(c *gin.Context) {
	id := api.ExecutionID(c.Param("executionID"))
	if !s.respondLifecycle(c, s.engine.PauseExecution(id)) {
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Execution paused"})
}

func (s *Server) resumeExecution(c *gin.Context) {
	id := api.ExecutionID(c.Param("executionID"))
	if !s.respondLifecycle(c, s.engine.ResumeExecution(id)) {
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Execution resumed"})
}

func (s *Server) cancelExecution(c *gin.Context) {
	id := api.ExecutionID(c.Param("executionID"))

	var req api.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:  err.Error(),
				Status: http.StatusBadRequest,
			})
			return
		}
	}

	if !s.respondLifecycle(c, s.engine.CancelExecution(id, req.Reason)) {
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Execution cancelled"})
}

// respondLifecycle maps lifecycle errors onto HTTP statuses. Returns
// true when the operation succeeded.
func (s *Server) respondLifecycle(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, engine.ErrExecutionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
	case errors.Is(err, engine.ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusConflict,
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
	}
	return false
}
