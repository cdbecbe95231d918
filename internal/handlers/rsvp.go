package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/drafts"
	"github.com/jbeaudin/maplewood/internal/models"
	"github.com/jbeaudin/maplewood/internal/services"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/logger"
	"github.com/jbeaudin/maplewood/pkg/metrics"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// RsvpHandler exposes the guest-facing RSVP flow: name lookup, submission,
// and draft persistence.
type RsvpHandler struct {
	db         *gorm.DB
	lookup     *services.LookupService
	submission *services.SubmissionService
	drafts     drafts.Store
	log        *zap.Logger
}

// NewRsvpHandler constructs an RsvpHandler. The draft store may be nil, in
// which case draft endpoints report an empty draft and saves are dropped.
func NewRsvpHandler(db *gorm.DB, lookup *services.LookupService, submission *services.SubmissionService, draftStore drafts.Store) (*RsvpHandler, error) {
	if db == nil {
		return nil, errors.New("rsvp handler: db is required")
	}
	if lookup == nil {
		return nil, errors.New("rsvp handler: lookup service is required")
	}
	if submission == nil {
		return nil, errors.New("rsvp handler: submission service is required")
	}
	return &RsvpHandler{
		db:         db,
		lookup:     lookup,
		submission: submission,
		drafts:     draftStore,
		log:        logger.WithModule("rsvp"),
	}, nil
}

type lookupRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// Lookup resolves a guest name to the owning party's full RSVP graph.
func (h *RsvpHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	graph, err := h.lookup.Lookup(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, appErrors.ErrGuestNotFound):
			metrics.Lookups.WithLabelValues("not_found").Inc()
		default:
			metrics.Lookups.WithLabelValues("invalid").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.Lookups.WithLabelValues("found").Inc()
	response.Success(c, http.StatusOK, graph)
}

type rsvpSelectionRequest struct {
	GuestID    string `json:"guest_id" validate:"required,uuid4"`
	EventID    string `json:"event_id" validate:"required,uuid4"`
	Status     string `json:"status" validate:"required,oneof=attending declined"`
	MealChoice string `json:"meal_choice" validate:"max=100"`
}

type dietaryUpdateRequest struct {
	GuestID             string `json:"guest_id" validate:"required,uuid4"`
	DietaryRestrictions string `json:"dietary_restrictions" validate:"max=500"`
}

type songChoiceRequest struct {
	Song   string `json:"song" validate:"max=200"`
	Artist string `json:"artist" validate:"max=200"`
}

type submitRequest struct {
	PartyID        string                 `json:"party_id" validate:"required,uuid4"`
	Rsvps          []rsvpSelectionRequest `json:"rsvps" validate:"required,min=1,dive"`
	DietaryUpdates []dietaryUpdateRequest `json:"dietary_updates" validate:"dive"`
	SongRequests   []songChoiceRequest    `json:"song_requests" validate:"dive"`
	Notes          string                 `json:"notes" validate:"max=2000"`
}

// Submit applies a full RSVP submission and clears any saved draft once the
// commit succeeds.
func (h *RsvpHandler) Submit(c *gin.Context) {
	var req submitRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.SubmitInput{
		PartyID: req.PartyID,
		Notes:   req.Notes,
	}
	for _, sel := range req.Rsvps {
		input.Rsvps = append(input.Rsvps, services.RsvpSelection{
			GuestID:    sel.GuestID,
			EventID:    sel.EventID,
			Status:     models.RsvpStatus(sel.Status),
			MealChoice: sel.MealChoice,
		})
	}
	for _, update := range req.DietaryUpdates {
		input.DietaryUpdates = append(input.DietaryUpdates, services.DietaryUpdate{
			GuestID:             update.GuestID,
			DietaryRestrictions: update.DietaryRestrictions,
		})
	}
	for _, song := range req.SongRequests {
		input.SongRequests = append(input.SongRequests, services.SongChoice{
			Song:   song.Song,
			Artist: song.Artist,
		})
	}

	graph, err := h.submission.Submit(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, appErrors.ErrDeadlinePassed) {
			metrics.Submissions.WithLabelValues("deadline").Inc()
		} else {
			metrics.Submissions.WithLabelValues("rejected").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.Submissions.WithLabelValues("committed").Inc()
	h.clearDraft(c, req.PartyID)
	response.Success(c, http.StatusOK, graph)
}

type draftResponse struct {
	Draft *drafts.Draft `json:"draft"`
}

// GetDraft restores a saved form snapshot. A party that has already submitted
// gets no draft back; the committed state is authoritative.
func (h *RsvpHandler) GetDraft(c *gin.Context) {
	partyID := c.Param("partyID")
	if h.drafts == nil {
		response.Success(c, http.StatusOK, draftResponse{})
		return
	}

	if submitted, err := h.partySubmitted(c, partyID); err != nil {
		response.Error(c, err)
		return
	} else if submitted {
		h.clearDraft(c, partyID)
		response.Success(c, http.StatusOK, draftResponse{})
		return
	}

	draft, ok, err := h.drafts.Get(c.Request.Context(), partyID)
	if err != nil {
		// Drafts are a convenience; a store failure reads as "no draft".
		h.log.Warn("draft load failed", zap.String("party_id", partyID), zap.Error(err))
		response.Success(c, http.StatusOK, draftResponse{})
		return
	}
	if !ok {
		response.Success(c, http.StatusOK, draftResponse{})
		return
	}

	response.Success(c, http.StatusOK, draftResponse{Draft: draft})
}

type saveDraftRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// SaveDraft snapshots in-progress form state for the party.
func (h *RsvpHandler) SaveDraft(c *gin.Context) {
	partyID := c.Param("partyID")

	var req saveDraftRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.partySubmitted(c, partyID); err != nil {
		response.Error(c, err)
		return
	}

	saved := false
	if h.drafts != nil {
		err := h.drafts.Set(c.Request.Context(), drafts.Draft{
			PartyID: partyID,
			Payload: req.Payload,
		})
		if err != nil {
			h.log.Warn("draft save failed", zap.String("party_id", partyID), zap.Error(err))
		} else {
			saved = true
		}
	}

	response.Success(c, http.StatusOK, gin.H{"saved": saved})
}

// DeleteDraft discards any saved snapshot for the party.
func (h *RsvpHandler) DeleteDraft(c *gin.Context) {
	h.clearDraft(c, c.Param("partyID"))
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

func (h *RsvpHandler) clearDraft(c *gin.Context, partyID string) {
	if h.drafts == nil || partyID == "" {
		return
	}
	if err := h.drafts.Clear(c.Request.Context(), partyID); err != nil {
		h.log.Warn("draft clear failed", zap.String("party_id", partyID), zap.Error(err))
	}
}

func (h *RsvpHandler) partySubmitted(c *gin.Context, partyID string) (bool, error) {
	var party models.Party
	err := h.db.WithContext(c.Request.Context()).
		Select("id", "submitted_at").
		First(&party, "id = ?", partyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, services.ErrPartyNotFound
		}
		return false, err
	}
	return party.SubmittedAt != nil, nil
}
