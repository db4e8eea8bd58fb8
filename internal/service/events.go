package service

import (
	"fmt"
	"strconv"

	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/dto"
	"clubhub/internal/model"
	"clubhub/pkg/validator"
)

func eventParam(ctx *ginext.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return 0, false
	}
	return id, true
}

// ListEvents orders by (display_order, date). available_seats is a read
// projection recomputed here; it is never the admission gate.
func (s *service) ListEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx.Request.Context())
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		count, err := s.repo.CountRegistrations(ctx.Request.Context(), e.ID)
		if err != nil {
			s.respondError(ctx, err)
			return
		}
		resp = append(resp, dto.ToEventResponse(&e, e.TotalSeats-count))
	}

	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	count, err := s.repo.CountRegistrations(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.ToEventResponse(event, event.TotalSeats-count))
}

func (s *service) SeatsRemaining(ctx *ginext.Context) {
	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	count, err := s.repo.CountRegistrations(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.SeatsResponse{
		EventID:        eventID,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: event.TotalSeats - count,
	})
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "create_event"); err != nil {
		s.respondError(ctx, err)
		return
	}

	event, ok := s.bindEvent(ctx)
	if !ok {
		return
	}

	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	event.ID = id

	s.log.Info().Int64("event_id", id).Msg("event created")
	dto.SuccessCreatedResponse(ctx, dto.ToEventResponse(event, event.TotalSeats))
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "update_event"); err != nil {
		s.respondError(ctx, err)
		return
	}

	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	event, ok := s.bindEvent(ctx)
	if !ok {
		return
	}
	event.ID = eventID

	if err := s.repo.UpdateEvent(ctx.Request.Context(), event); err != nil {
		s.respondError(ctx, err)
		return
	}

	count, err := s.repo.CountRegistrations(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.ToEventResponse(event, event.TotalSeats-count))
}

// DeleteEvent cascades registrations then the event in one transaction;
// a failure partway leaves everything in place.
func (s *service) DeleteEvent(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "delete_event"); err != nil {
		s.respondError(ctx, err)
		return
	}

	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	if err := s.repo.DeleteEventTx(ctx.Request.Context(), eventID); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Int64("event_id", eventID).Msg("event deleted with registrations")
	dto.SuccessResponse(ctx, ginext.H{"deleted": eventID})
}

func (s *service) ListRegistrations(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "list_registrations"); err != nil {
		s.respondError(ctx, err)
		return
	}

	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	regs, err := s.repo.GetRegistrationsByEventID(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	resp := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		resp = append(resp, dto.ToRegistrationResponse(&regs[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListFeePlans(ctx *ginext.Context) {
	plans, err := s.repo.GetFeePlans(ctx.Request.Context())
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, plans)
}

func (s *service) bindEvent(ctx *ginext.Context) (*model.Event, bool) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return nil, false
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return nil, false
	}

	// fee_amount must be zero for free events
	if !req.IsPaid && req.FeeAmount != 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "fee_amount must be 0 for a free event")
		return nil, false
	}
	if req.IsPaid && req.FeeAmount <= 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "fee_amount is required for a paid event")
		return nil, false
	}

	return &model.Event{
		Title:                 req.Title,
		Description:           req.Description,
		Type:                  req.Type,
		Date:                  req.Date,
		Time:                  req.Time,
		Location:              req.Location,
		TotalSeats:            req.TotalSeats,
		IsPaid:                req.IsPaid,
		FeeAmount:             req.FeeAmount,
		PaymentTimeoutMinutes: req.PaymentTimeoutMinutes,
		DisplayOrder:          req.DisplayOrder,
		ImageURL:              req.ImageURL,
		WhatsappLink:          req.WhatsappLink,
		ExternalLink:          req.ExternalLink,
	}, true
}
