package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jbeaudin/maplewood/internal/services"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/response"
)

// ReportHandler serves the admin dashboard summary, the RSVP table, the song
// request list, and the CSV export.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports *services.ReportService) (*ReportHandler, error) {
	if reports == nil {
		return nil, errors.New("report handler: report service is required")
	}
	return &ReportHandler{reports: reports}, nil
}

// Stats returns the dashboard summary.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListRsvps returns every response row for the admin table.
func (h *ReportHandler) ListRsvps(c *gin.Context) {
	rows, err := h.reports.ListRsvps(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// ListSongRequests returns the collected playlist suggestions.
func (h *ReportHandler) ListSongRequests(c *gin.Context) {
	rows, err := h.reports.ListSongRequests(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// ExportRsvps streams the full RSVP table as a CSV download for caterers and
// seating charts.
func (h *ReportHandler) ExportRsvps(c *gin.Context) {
	rows, err := h.reports.ListRsvps(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("rsvps-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	header := []string{"party", "first_name", "last_name", "event", "status", "meal_choice", "dietary_restrictions", "submitted_at"}
	if err := writer.Write(header); err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	for _, row := range rows {
		submittedAt := ""
		if row.SubmittedAt != nil {
			submittedAt = row.SubmittedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			row.PartyName,
			row.GuestFirstName,
			row.GuestLastName,
			row.EventName,
			row.Status,
			row.MealChoice,
			row.DietaryRestrictions,
			submittedAt,
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}
