package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/dto"
	"clubhub/internal/model"
	"clubhub/pkg/validator"
)

func registrationParam(ctx *ginext.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return 0, false
	}
	return id, true
}

// Register admits a registration attempt. Capacity and duplicate checks run
// inside the repository transaction against committed state; any seat count
// the client displayed is advisory only.
func (s *service) Register(ctx *ginext.Context) {
	eventID, ok := eventParam(ctx)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	registration := &model.Registration{
		EventID:  eventID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Branch:   req.Branch,
		Year:     req.Year,
	}

	// a signed-in caller registers as a linked member, a guest by email only
	if actor := actorID(ctx); actor != "" {
		if member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor); err == nil {
			registration.MemberID = &member.ID
		}
	}

	if event.IsPaid {
		if req.PaymentRef != "" {
			if err := s.refValid(req.PaymentRef); err != nil {
				dto.BadResponseError(ctx, dto.InvalidPaymentRef, err.Error())
				return
			}
			registration.PaymentRef = req.PaymentRef
			registration.AmountPaid = event.FeeAmount
		}
	} else if req.PaymentRef != "" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "This event is free")
		return
	}

	id, err := s.repo.RegisterTx(ctx.Request.Context(), registration)
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	registration.ID = id

	s.log.Info().
		Int64("registration_id", id).
		Int64("event_id", eventID).
		Str("payment_status", string(registration.PaymentStatus)).
		Msg("registration created")

	if event.IsPaid && event.PaymentTimeoutMinutes > 0 {
		s.scheduleExpiry(id, eventID, event.PaymentTimeoutMinutes)
	}

	state := "confirmed"
	if registration.PaymentStatus == model.PaymentPending {
		state = "pending"
	}
	if err := s.mail.SendRegistrationEmail(event.Title, state, registration.Email, event.PaymentTimeoutMinutes); err != nil {
		s.log.Warn().Err(err).Msg("failed to send registration email")
	}

	dto.SuccessCreatedResponse(ctx, dto.ToRegistrationResponse(registration))
}

func (s *service) scheduleExpiry(registrationID, eventID int64, timeoutMinutes int) {
	msg := dto.PaymentExpiryMessage{
		RegistrationID: registrationID,
		EventID:        eventID,
		ExpireAt:       time.Now().Add(time.Duration(timeoutMinutes) * time.Minute),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal expiry message")
		return
	}
	if err := s.rbt.Publish(payload, timeoutMinutes*60); err != nil {
		s.log.Error().Err(err).Msg("failed to publish expiry message")
	}
}

// CancelRegistration frees the seat. Allowed for the registrant themself or
// an elevated actor.
func (s *service) CancelRegistration(ctx *ginext.Context) {
	regID, ok := registrationParam(ctx)
	if !ok {
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), regID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	actor := actorID(ctx)
	self := false
	if actor != "" && !reg.Guest() {
		if member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor); err == nil {
			self = member.ID == *reg.MemberID
		}
	}
	if !self {
		if _, err := s.guard.RequireElevated(ctx.Request.Context(), actor, "cancel_registration"); err != nil {
			s.respondError(ctx, err)
			return
		}
	}

	if err := s.repo.DeleteRegistration(ctx.Request.Context(), regID); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Int64("registration_id", regID).Bool("self", self).Msg("registration cancelled")
	dto.SuccessResponse(ctx, ginext.H{"cancelled": regID})
}

// SubmitRegistrationPayment captures a payment reference for a paid event
// registration; the format check runs before the record enters pending.
func (s *service) SubmitRegistrationPayment(ctx *ginext.Context) {
	regID, ok := registrationParam(ctx)
	if !ok {
		return
	}

	var req dto.SubmitPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if err := s.refValid(req.PaymentRef); err != nil {
		dto.BadResponseError(ctx, dto.InvalidPaymentRef, err.Error())
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), regID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), reg.EventID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	if !event.IsPaid {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "This event is free")
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = event.FeeAmount
	}

	if err := s.repo.SetRegistrationPaymentRef(ctx.Request.Context(), regID, req.PaymentRef, amount); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Int64("registration_id", regID).Msg("payment reference submitted")
	dto.SuccessResponse(ctx, ginext.H{"registration_id": regID, "payment_status": model.PaymentPending})
}

// VerifyRegistrationPayment is the only pending -> confirmed transition,
// and only an elevated actor may drive it.
func (s *service) VerifyRegistrationPayment(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "verify_payment"); err != nil {
		s.respondError(ctx, err)
		return
	}

	regID, ok := registrationParam(ctx)
	if !ok {
		return
	}

	if err := s.repo.ConfirmRegistrationPayment(ctx.Request.Context(), regID); err != nil {
		s.respondError(ctx, err)
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), regID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Int64("registration_id", regID).Msg("payment confirmed")

	if event, err := s.repo.GetEventByID(ctx.Request.Context(), reg.EventID); err == nil {
		if err := s.mail.SendRegistrationEmail(event.Title, "confirmed", reg.Email, 0); err != nil {
			s.log.Warn().Err(err).Msg("failed to send confirmation email")
		}
	}

	dto.SuccessResponse(ctx, dto.ToRegistrationResponse(reg))
}
