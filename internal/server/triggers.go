package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

var ErrTriggerNotFound = errors.New("trigger not found")

func (s *Server) listTriggers(c *gin.Context) {
	triggers := s.engine.Triggers().List()
	c.JSON(http.StatusOK, api.TriggersListResponse{
		Triggers: triggers,
		Count:    len(triggers),
	})
}

func (s *Server) createTrigger(c *gin.Context) {
	var tr api.Trigger
	if err := c.ShouldBindJSON(&tr); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	id, err := s.engine.RegisterTrigger(&tr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	c.JSON(http.StatusCreated, api.TriggerRegisteredResponse{
		ID:      id,
		Message: "Trigger registered",
	})
}

func (s *Server) getTrigger(c *gin.Context) {
	id := api.TriggerID(c.Param("triggerID"))
	tr, ok := s.engine.Triggers().Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrTriggerNotFound, id),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, tr)
}

func (s *Server) setTriggerStatus(c *gin.Context) {
	id := api.TriggerID(c.Param("triggerID"))

	var req struct {
		Status api.TriggerStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}
	if !validTriggerStatus(req.Status) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("invalid trigger status %q", req.Status),
			Status: http.StatusBadRequest,
		})
		return
	}

	if !s.engine.Triggers().SetStatus(id, req.Status) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrTriggerNotFound, id),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{
		Message: "Trigger status updated",
	})
}

func validTriggerStatus(s api.TriggerStatus) bool {
	switch s {
	case api.TriggerActive, api.TriggerInactive, api.TriggerSuspended,
		api.TriggerTesting:
		return true
	}
	return false
}
