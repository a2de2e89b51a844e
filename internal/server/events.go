package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

var ErrSubmitEvent = errors.New("failed to submit event")

func (s *Server) submitEvent(c *gin.Context) {
	var ev api.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}
	if ev.Source == "" {
		ev.Source = api.SourceAPI
	}

	res, err := s.engine.Submit(c.Request.Context(), &ev)
	if err == nil {
		c.JSON(http.StatusAccepted, res)
		return
	}

	if errors.Is(err, api.ErrValidation) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Error:  fmt.Sprintf("%s: %v", ErrSubmitEvent, err),
		Status: http.StatusInternalServerError,
	})
}
