package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
)

func TestEventServiceCreateAndList(t *testing.T) {
	f := newFixture(t)
	service, err := NewEventService(f.db)
	require.NoError(t, err)

	event, err := service.Create(context.Background(), CreateEventInput{
		Slug:         "  Brunch ",
		Name:         "Farewell Brunch",
		Location:     "The Maplewood Inn",
		DisplayOrder: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "brunch", event.Slug)

	events, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ceremony", events[0].Slug)
	assert.Equal(t, "reception", events[1].Slug)
	assert.Equal(t, "brunch", events[2].Slug)
}

func TestEventServiceCreateDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	service, err := NewEventService(f.db)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateEventInput{
		Slug: "ceremony",
		Name: "Second Ceremony",
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestEventServiceUpdateKeepsSlug(t *testing.T) {
	f := newFixture(t)
	service, err := NewEventService(f.db)
	require.NoError(t, err)

	name := "Garden Ceremony"
	event, err := service.Update(context.Background(), f.ceremony.ID, UpdateEventInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Garden Ceremony", event.Name)
	assert.Equal(t, "ceremony", event.Slug)
}

func TestEventServiceDelete(t *testing.T) {
	f := newFixture(t)
	service, err := NewEventService(f.db)
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), f.ceremony.ID))
	assert.ErrorIs(t, service.Delete(context.Background(), f.ceremony.ID), ErrEventNotFound)
}
