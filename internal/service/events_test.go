package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub/internal/dto"
	"clubhub/internal/model"
)

func TestCreateEvent_GuardGated(t *testing.T) {
	env := setup(t)
	env.addAdmin("boss")
	env.addMember("plain", model.RoleMember, model.MemberApproved)

	body := dto.CreateEventRequest{
		Title:      "Hack Night",
		Date:       time.Now().Add(72 * time.Hour),
		TotalSeats: 50,
	}

	w := doJSON(t, env.app, http.MethodPost, "/v1/events", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.app, http.MethodPost, "/v1/events", "plain", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.app, http.MethodPost, "/v1/events", "boss", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateEvent_FeeInvariants(t *testing.T) {
	env := setup(t)
	env.addAdmin("boss")

	w := doJSON(t, env.app, http.MethodPost, "/v1/events", "boss", dto.CreateEventRequest{
		Title:      "Free But Priced",
		Date:       time.Now().Add(72 * time.Hour),
		TotalSeats: 50,
		IsPaid:     false,
		FeeAmount:  100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env.app, http.MethodPost, "/v1/events", "boss", dto.CreateEventRequest{
		Title:      "Paid But Gratis",
		Date:       time.Now().Add(72 * time.Hour),
		TotalSeats: 50,
		IsPaid:     true,
		FeeAmount:  0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeatsRemaining(t *testing.T) {
	env := setup(t)
	env.addEvent(&model.Event{Title: "Meetup", TotalSeats: 3})

	doJSON(t, env.app, http.MethodPost, "/v1/events/1/register", "", dto.RegisterRequest{
		FullName: "One", Email: "one@club.test", Phone: "9876543210",
	})

	w := doJSON(t, env.app, http.MethodGet, "/v1/events/1/seats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	raw, _ := json.Marshal(resp.Data)
	var seats dto.SeatsResponse
	require.NoError(t, json.Unmarshal(raw, &seats))
	assert.Equal(t, 3, seats.TotalSeats)
	assert.Equal(t, 2, seats.AvailableSeats)
}

func TestListEvents_Ordering(t *testing.T) {
	env := setup(t)
	env.addEvent(&model.Event{Title: "Second", DisplayOrder: 2})
	env.addEvent(&model.Event{Title: "First", DisplayOrder: 1})

	w := doJSON(t, env.app, http.MethodGet, "/v1/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	raw, _ := json.Marshal(resp.Data)
	var events []dto.EventResponse
	require.NoError(t, json.Unmarshal(raw, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, "Second", events[1].Title)
}

func TestListEvents_CountFailureSurfaces(t *testing.T) {
	env := setup(t)
	env.addEvent(&model.Event{Title: "Meetup", TotalSeats: 10})
	env.repo.countErr = errors.New("count unavailable")

	w := doJSON(t, env.app, http.MethodGet, "/v1/events", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
}

func TestUpdateEvent_SeatsBelowRegistered(t *testing.T) {
	env := setup(t)
	env.addAdmin("boss")
	env.addEvent(&model.Event{Title: "Meetup", TotalSeats: 2})

	for _, email := range []string{"a@club.test", "b@club.test"} {
		w := doJSON(t, env.app, http.MethodPost, "/v1/events/1/register", "", dto.RegisterRequest{
			FullName: "Guest", Email: email, Phone: "9876543210",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, env.app, http.MethodPut, "/v1/events/1", "boss", dto.CreateEventRequest{
		Title:      "Meetup",
		Date:       time.Now().Add(48 * time.Hour),
		TotalSeats: 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, dto.FieldIncorrect, errorCode(t, w))
	assert.Equal(t, 2, env.repo.events[1].TotalSeats)

	w = doJSON(t, env.app, http.MethodPut, "/v1/events/1", "boss", dto.CreateEventRequest{
		Title:      "Meetup",
		Date:       time.Now().Add(48 * time.Hour),
		TotalSeats: 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, env.repo.events[1].TotalSeats)
}

func TestDeleteEvent_Cascades(t *testing.T) {
	env := setup(t)
	env.addAdmin("boss")
	env.addEvent(&model.Event{Title: "Doomed", TotalSeats: 10})

	doJSON(t, env.app, http.MethodPost, "/v1/events/1/register", "", dto.RegisterRequest{
		FullName: "Guest", Email: "guest@club.test", Phone: "9876543210",
	})

	w := doJSON(t, env.app, http.MethodDelete, "/v1/events/1", "boss", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, env.repo.events)
	assert.Empty(t, env.repo.registrations)
}

func TestListRegistrations_GuardGated(t *testing.T) {
	env := setup(t)
	env.addAdmin("boss")
	env.addEvent(&model.Event{Title: "Meetup", TotalSeats: 10})

	doJSON(t, env.app, http.MethodPost, "/v1/events/1/register", "", dto.RegisterRequest{
		FullName: "Guest", Email: "guest@club.test", Phone: "9876543210",
	})

	w := doJSON(t, env.app, http.MethodGet, "/v1/events/1/registrations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, env.app, http.MethodGet, "/v1/events/1/registrations", "boss", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	raw, _ := json.Marshal(resp.Data)
	var regs []dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(raw, &regs))
	assert.Len(t, regs, 1)
}

func TestListFeePlans_Public(t *testing.T) {
	env := setup(t)

	w := doJSON(t, env.app, http.MethodGet, "/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	raw, _ := json.Marshal(resp.Data)
	var plans []model.FeePlan
	require.NoError(t, json.Unmarshal(raw, &plans))
	assert.Len(t, plans, 2)
}
