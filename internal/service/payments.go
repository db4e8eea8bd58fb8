package service

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/dto"
	"clubhub/internal/model"
)

// SubmitMembershipPayment records the caller's membership fee reference and
// moves their payment to pending. Confirmation stays with the admin side.
func (s *service) SubmitMembershipPayment(ctx *ginext.Context) {
	actor := actorID(ctx)
	if actor == "" {
		dto.NotAuthorizedError(ctx)
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

	member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	duration := req.Plan
	amount := req.Amount
	if duration != "" {
		plan, err := s.repo.GetFeePlanByLabel(ctx.Request.Context(), duration)
		if err != nil {
			s.respondError(ctx, err)
			return
		}
		if amount == 0 {
			amount = plan.Amount
		}
	} else {
		duration = member.Duration
	}

	if err := s.repo.SetMemberPaymentRef(ctx.Request.Context(), member.ID, req.PaymentRef, amount, duration); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", member.ID).Str("plan", duration).Msg("membership payment submitted")
	dto.SuccessResponse(ctx, ginext.H{"member_id": member.ID, "payment_status": model.PaymentPending})
}

// VerifyMemberPayment confirms a submitted membership fee and activates the
// membership in one step.
func (s *service) VerifyMemberPayment(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "verify_member_payment"); err != nil {
		s.respondError(ctx, err)
		return
	}

	id := ctx.Param("id")
	member, err := s.repo.GetMemberByID(ctx.Request.Context(), id)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	validTill := time.Now().AddDate(s.planYears(ctx, member.Duration), 0, 0)
	member, err = s.repo.ApproveMemberTx(ctx.Request.Context(), id, validTill, true)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", id).Time("valid_till", validTill).Msg("membership payment confirmed")

	if err := s.mail.SendMembershipEmail("approved", member.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to send approval email")
	}

	dto.SuccessResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}
