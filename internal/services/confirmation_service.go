package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	"github.com/jbeaudin/maplewood/pkg/logger"
	"github.com/jbeaudin/maplewood/pkg/mail"
	"github.com/jbeaudin/maplewood/pkg/metrics"
)

const (
	defaultRelaySchedule = "@every 30s"
	defaultMaxAttempts   = 5
	defaultBatchSize     = 20
)

// ConfirmationOption customises the ConfirmationService.
type ConfirmationOption func(*ConfirmationService)

// WithRelaySchedule overrides the cron specification for the outbox relay.
func WithRelaySchedule(spec string) ConfirmationOption {
	return func(s *ConfirmationService) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithMaxAttempts caps delivery retries per queued confirmation.
func WithMaxAttempts(n int) ConfirmationOption {
	return func(s *ConfirmationService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithConfirmationClock injects a custom clock, primarily for testing.
func WithConfirmationClock(clock func() time.Time) ConfirmationOption {
	return func(s *ConfirmationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ConfirmationService queues confirmation emails in the submission
// transaction (outbox pattern) and delivers them asynchronously on a cron
// schedule. A submission therefore never waits on SMTP, and a party's
// confirmation_sent_at is stamped only after the relay actually delivers.
type ConfirmationService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	cron        *cron.Cron
	log         *zap.Logger
	schedule    string
	maxAttempts int
	now         func() time.Time
}

// NewConfirmationService constructs a ConfirmationService.
func NewConfirmationService(db *gorm.DB, mailer mail.Mailer, opts ...ConfirmationOption) (*ConfirmationService, error) {
	if db == nil {
		return nil, errors.New("confirmation service: db is required")
	}

	service := &ConfirmationService{
		db:          db,
		mailer:      mailer,
		log:         logger.WithModule("confirmations"),
		schedule:    defaultRelaySchedule,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Enqueue writes an outbox row for the party using the supplied transaction
// handle, so the email is queued if and only if the submission commits.
func (s *ConfirmationService) Enqueue(ctx context.Context, tx *gorm.DB, graph *PartyGraph, recipient string) error {
	if tx == nil {
		return errors.New("confirmation service: transaction handle is required")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		// A party without a contact email simply gets no confirmation.
		return nil
	}

	confirmation := models.Confirmation{
		PartyID:   graph.ID,
		Recipient: recipient,
		Subject:   fmt.Sprintf("RSVP received for %s", graph.Name),
		Body:      RenderConfirmationBody(graph),
	}
	return tx.WithContext(ctx).Create(&confirmation).Error
}

// Start schedules the outbox relay.
func (s *ConfirmationService) Start() error {
	if s.cron != nil {
		return errors.New("confirmation service: already started")
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.DispatchPending(ctx); err != nil {
			s.log.Warn("confirmation relay run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("confirmation service: schedule relay: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the relay and returns a context that completes when any
// in-flight run finishes.
func (s *ConfirmationService) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// DispatchPending sends queued confirmations that have not yet been delivered
// and have attempts remaining. Delivery failures are recorded and retried on
// the next run; they never propagate to the guest-facing request path.
func (s *ConfirmationService) DispatchPending(ctx context.Context) error {
	var pending []models.Confirmation
	if err := s.db.WithContext(ctx).
		Where("sent_at IS NULL AND attempts < ?", s.maxAttempts).
		Order("created_at").
		Limit(defaultBatchSize).
		Find(&pending).Error; err != nil {
		return fmt.Errorf("load pending confirmations: %w", err)
	}

	var errs error
	for _, confirmation := range pending {
		if err := s.dispatchOne(ctx, confirmation); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (s *ConfirmationService) dispatchOne(ctx context.Context, confirmation models.Confirmation) error {
	sendErr := errors.New("confirmation service: no mailer configured")
	if s.mailer != nil {
		sendErr = s.mailer.Send(ctx, mail.Message{
			To:      []string{confirmation.Recipient},
			Subject: confirmation.Subject,
			Body:    confirmation.Body,
		})
	}

	now := s.now()

	if sendErr != nil {
		if errors.Is(sendErr, mail.ErrDisabled) {
			// Delivery disabled: leave the row queued without burning attempts.
			return nil
		}

		metrics.ConfirmationsSent.WithLabelValues("failure").Inc()
		s.log.Warn("confirmation delivery failed",
			zap.String("party_id", confirmation.PartyID),
			zap.Error(sendErr),
		)
		return s.db.WithContext(ctx).Model(&models.Confirmation{}).
			Where("id = ?", confirmation.ID).
			Updates(map[string]any{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": sendErr.Error(),
				"updated_at": now,
			}).Error
	}

	metrics.ConfirmationsSent.WithLabelValues("success").Inc()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Confirmation{}).
			Where("id = ?", confirmation.ID).
			Updates(map[string]any{"sent_at": now, "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Party{}).
			Where("id = ?", confirmation.PartyID).
			Update("confirmation_sent_at", now).Error
	})
}

// RenderConfirmationBody formats the plain-text confirmation summary from a
// committed party graph: per-guest status for every invited event, meal
// choices, dietary notes, song requests, and the party's note.
func RenderConfirmationBody(graph *PartyGraph) string {
	guestNames := make(map[string]string, len(graph.Guests))
	dietary := make(map[string]string, len(graph.Guests))
	for _, guest := range graph.Guests {
		guestNames[guest.ID] = guest.FirstName + " " + guest.LastName
		if guest.DietaryRestrictions != "" {
			dietary[guest.ID] = guest.DietaryRestrictions
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThank you for your RSVP! Here is what we have recorded:\n", graph.Name)

	for _, invited := range graph.InvitedEvents {
		fmt.Fprintf(&b, "\n%s\n", invited.Event.Name)
		for _, rsvp := range invited.Rsvps {
			name := guestNames[rsvp.GuestID]
			switch rsvp.Status {
			case models.RsvpStatusAttending:
				if rsvp.MealChoice != "" {
					fmt.Fprintf(&b, "  - %s: attending (%s)\n", name, rsvp.MealChoice)
				} else {
					fmt.Fprintf(&b, "  - %s: attending\n", name)
				}
			case models.RsvpStatusDeclined:
				fmt.Fprintf(&b, "  - %s: unable to attend\n", name)
			default:
				fmt.Fprintf(&b, "  - %s: no response yet\n", name)
			}
		}
	}

	if len(dietary) > 0 {
		b.WriteString("\nDietary notes:\n")
		for _, guest := range graph.Guests {
			if note, ok := dietary[guest.ID]; ok {
				fmt.Fprintf(&b, "  - %s %s: %s\n", guest.FirstName, guest.LastName, note)
			}
		}
	}

	if len(graph.SongRequests) > 0 {
		b.WriteString("\nSong requests:\n")
		for _, song := range graph.SongRequests {
			if song.Artist != "" {
				fmt.Fprintf(&b, "  - %s by %s\n", song.Song, song.Artist)
			} else {
				fmt.Fprintf(&b, "  - %s\n", song.Song)
			}
		}
	}

	if graph.Notes != "" {
		fmt.Fprintf(&b, "\nYour note:\n%s\n", graph.Notes)
	}

	b.WriteString("\nNeed to change something? Just look yourself up again and resubmit.\n")
	return b.String()
}
