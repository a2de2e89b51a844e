package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// StartWorkflowRequest begins an execution outside the trigger path
type StartWorkflowRequest struct {
	SubjectID api.SubjectID `json:"subject_id,omitempty"`
	Init      api.Payload   `json:"init,omitempty"`
}

func (s *Server) listWorkflows(c *gin.Context) {
	defs := s.engine.ListWorkflows()
	c.JSON(http.StatusOK, gin.H{
		"workflows": defs,
		"count":     len(defs),
	})
}

func (s *Server) createWorkflow(c *gin.Context) {
	var def api.WorkflowDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	err := s.engine.RegisterWorkflow(&def)
	if err == nil {
		c.JSON(http.StatusCreated, api.WorkflowRegisteredResponse{
			ID:      def.ID,
			Message: "Workflow registered",
		})
		return
	}

	if errors.Is(err, engine.ErrWorkflowExists) {
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusConflict,
		})
		return
	}
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusBadRequest,
	})
}

func (s *Server) getWorkflow(c *gin.Context) {
	id := api.WorkflowID(c.Param("workflowID"))
	def, err := s.engine.GetWorkflow(id)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, def)
}

func (s *Server) startWorkflow(c *gin.Context) {
	id := api.WorkflowID(c.Param("workflowID"))

	var req StartWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	execID, err := s.engine.StartWorkflow(id, req.SubjectID, req.Init)
	if err == nil {
		c.JSON(http.StatusCreated, gin.H{
			"execution_id": execID,
		})
		return
	}

	switch {
	case errors.Is(err, engine.ErrWorkflowNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
	case errors.Is(err, api.ErrConcurrencyLimit):
		c.JSON(http.StatusTooManyRequests, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusTooManyRequests,
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
	}
}
