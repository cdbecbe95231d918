package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jbeaudin/maplewood/internal/services"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// GuestHandler exposes the admin CRUD surface for individual guests.
type GuestHandler struct {
	guests *services.GuestService
}

// NewGuestHandler constructs a GuestHandler.
func NewGuestHandler(guests *services.GuestService) (*GuestHandler, error) {
	if guests == nil {
		return nil, errors.New("guest handler: guest service is required")
	}
	return &GuestHandler{guests: guests}, nil
}

type createGuestRequest struct {
	PartyID             string `json:"party_id" validate:"required,uuid4"`
	FirstName           string `json:"first_name" validate:"required,max=100"`
	LastName            string `json:"last_name" validate:"required,max=100"`
	IsPrimary           bool   `json:"is_primary"`
	IsChild             bool   `json:"is_child"`
	DietaryRestrictions string `json:"dietary_restrictions" validate:"max=500"`
}

// Create adds a guest to an existing party.
func (h *GuestHandler) Create(c *gin.Context) {
	var req createGuestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.guests.Create(c.Request.Context(), services.CreateGuestInput{
		PartyID:             req.PartyID,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		IsPrimary:           req.IsPrimary,
		IsChild:             req.IsChild,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, guest)
}

type updateGuestRequest struct {
	FirstName           *string `json:"first_name" validate:"omitempty,max=100"`
	LastName            *string `json:"last_name" validate:"omitempty,max=100"`
	IsPrimary           *bool   `json:"is_primary"`
	IsChild             *bool   `json:"is_child"`
	DietaryRestrictions *string `json:"dietary_restrictions" validate:"omitempty,max=500"`
}

// Update applies a partial update to a guest.
func (h *GuestHandler) Update(c *gin.Context) {
	var req updateGuestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.guests.Update(c.Request.Context(), c.Param("id"), services.UpdateGuestInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		IsPrimary:           req.IsPrimary,
		IsChild:             req.IsChild,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, guest)
}

// Delete removes a guest.
func (h *GuestHandler) Delete(c *gin.Context) {
	if err := h.guests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
