package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jbeaudin/maplewood/internal/services"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// EventHandler exposes the admin CRUD surface for events.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *services.EventService) (*EventHandler, error) {
	if events == nil {
		return nil, errors.New("event handler: event service is required")
	}
	return &EventHandler{events: events}, nil
}

// List returns all events in display order.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

type createEventRequest struct {
	Slug         string     `json:"slug" validate:"required,max=100"`
	Name         string     `json:"name" validate:"required,max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	Location     string     `json:"location" validate:"max=500"`
	StartsAt     *time.Time `json:"starts_at"`
	DisplayOrder int        `json:"display_order"`
}

// Create inserts a new event.
func (h *EventHandler) Create(c *gin.Context) {
	var req createEventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Create(c.Request.Context(), services.CreateEventInput{
		Slug:         req.Slug,
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

type updateEventRequest struct {
	Name         *string    `json:"name" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Location     *string    `json:"location" validate:"omitempty,max=500"`
	StartsAt     *time.Time `json:"starts_at"`
	DisplayOrder *int       `json:"display_order"`
}

// Update applies a partial update to an event.
func (h *EventHandler) Update(c *gin.Context) {
	var req updateEventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.events.Update(c.Request.Context(), c.Param("id"), services.UpdateEventInput{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		StartsAt:     req.StartsAt,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Delete removes an event.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
