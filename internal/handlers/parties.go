package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jbeaudin/maplewood/internal/services"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// PartyHandler exposes the admin CRUD surface for parties, their guests, and
// their invitations.
type PartyHandler struct {
	parties     *services.PartyService
	guests      *services.GuestService
	invitations *services.InvitationService
}

// NewPartyHandler constructs a PartyHandler.
func NewPartyHandler(parties *services.PartyService, guests *services.GuestService, invitations *services.InvitationService) (*PartyHandler, error) {
	if parties == nil || guests == nil || invitations == nil {
		return nil, errors.New("party handler: all services are required")
	}
	return &PartyHandler{parties: parties, guests: guests, invitations: invitations}, nil
}

// List returns all parties.
func (h *PartyHandler) List(c *gin.Context) {
	parties, err := h.parties.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, parties)
}

// Get returns one party with its full relations.
func (h *PartyHandler) Get(c *gin.Context) {
	party, err := h.parties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, party)
}

type guestPayload struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	IsPrimary bool   `json:"is_primary"`
	IsChild   bool   `json:"is_child"`
}

type createPartyRequest struct {
	Name   string         `json:"name" validate:"required,max=200"`
	Email  string         `json:"email" validate:"required,email"`
	Notes  string         `json:"notes" validate:"max=2000"`
	Guests []guestPayload `json:"guests" validate:"dive"`
}

// Create inserts a new party with its initial guests.
func (h *PartyHandler) Create(c *gin.Context) {
	var req createPartyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.CreatePartyInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	}
	for _, guest := range req.Guests {
		input.Guests = append(input.Guests, services.GuestInput{
			FirstName: guest.FirstName,
			LastName:  guest.LastName,
			IsPrimary: guest.IsPrimary,
			IsChild:   guest.IsChild,
		})
	}

	party, err := h.parties.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, party)
}

type updatePartyRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// Update applies a partial update to a party.
func (h *PartyHandler) Update(c *gin.Context) {
	var req updatePartyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	party, err := h.parties.Update(c.Request.Context(), c.Param("id"), services.UpdatePartyInput{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, party)
}

// Delete removes a party and everything attached to it.
func (h *PartyHandler) Delete(c *gin.Context) {
	if err := h.parties.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type replaceInvitationsRequest struct {
	EventIDs []string `json:"event_ids" validate:"dive,uuid4"`
}

// ReplaceInvitations sets the party's invitation set to exactly the supplied
// events.
func (h *PartyHandler) ReplaceInvitations(c *gin.Context) {
	var req replaceInvitationsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	graph, err := h.invitations.Replace(c.Request.Context(), c.Param("id"), req.EventIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, graph)
}
