package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/dto"
	"clubhub/internal/model"
	"clubhub/internal/repo"
	"clubhub/pkg/validator"
)

// Signup files a membership application. The record starts pending and stays
// inert until an elevated actor approves it.
func (s *service) Signup(ctx *ginext.Context) {
	actor := actorID(ctx)
	if actor == "" {
		dto.NotAuthorizedError(ctx)
		return
	}

	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	member := &model.Member{
		ID:            uuid.New().String(),
		UserID:        actor,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Department:    req.Department,
		Year:          req.Year,
		Course:        req.Course,
		College:       req.College,
		Status:        model.MemberPending,
		Role:          model.RoleMember,
		PaymentStatus: model.PaymentNone,
	}

	if err := s.repo.CreateMember(ctx.Request.Context(), member); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", member.ID).Msg("membership application received")

	if err := s.mail.SendMembershipEmail("pending", member.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to send signup email")
	}

	dto.SuccessCreatedResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}

// GetMemberStatus returns the caller's own membership record.
func (s *service) GetMemberStatus(ctx *ginext.Context) {
	actor := actorID(ctx)
	if actor == "" {
		dto.NotAuthorizedError(ctx)
		return
	}

	member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}

// UpdateProfile lets a member edit contact and academic fields. Role, status
// and payment fields are not reachable from here.
func (s *service) UpdateProfile(ctx *ginext.Context) {
	actor := actorID(ctx)
	if actor == "" {
		dto.NotAuthorizedError(ctx)
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	update := model.ProfileUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		Department: req.Department,
		Year:       req.Year,
		Course:     req.Course,
	}
	if err := s.repo.UpdateMemberProfile(ctx.Request.Context(), member.ID, update); err != nil {
		s.respondError(ctx, err)
		return
	}

	member, err = s.repo.GetMemberByID(ctx.Request.Context(), member.ID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}

// UploadAvatar stores a profile picture and records its public URL.
func (s *service) UploadAvatar(ctx *ginext.Context) {
	actor := actorID(ctx)
	if actor == "" {
		dto.NotAuthorizedError(ctx)
		return
	}

	member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), actor)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Missing file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unreadable file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := s.avatars.UploadAvatar(member.UserID, fileHeader.Filename, contentType, file)
	if err != nil {
		s.log.Error().Err(err).Msg("avatar upload failed")
		dto.InternalServerError(ctx)
		return
	}

	update := model.ProfileUpdate{ProfilePic: &url}
	if err := s.repo.UpdateMemberProfile(ctx.Request.Context(), member.ID, update); err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, ginext.H{"profile_pic": url})
}

// VerifyMember answers a scan of a member card. It never leaks whether an
// account exists beyond the four public states.
func (s *service) VerifyMember(ctx *ginext.Context) {
	userID := ctx.Param("userID")

	member, err := s.repo.GetMemberByUserID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrMemberNotFound) {
			dto.SuccessResponse(ctx, dto.VerifyMemberResponse{Status: "invalid"})
			return
		}
		s.respondError(ctx, err)
		return
	}

	resp := dto.VerifyMemberResponse{
		Name:       member.Name,
		Department: member.Department,
		Year:       member.Year,
		ValidTill:  member.ValidTill,
		ProfilePic: member.ProfilePic,
	}
	switch {
	case member.Status != model.MemberApproved:
		resp = dto.VerifyMemberResponse{Status: "not_approved"}
	case member.ActiveAt(time.Now()):
		resp.Status = "valid"
	default:
		resp.Status = "expired"
	}

	dto.SuccessResponse(ctx, resp)
}

// planYears resolves a membership duration label to its validity in years.
func (s *service) planYears(ctx *ginext.Context, duration string) int {
	if duration == "" {
		return s.defaultYears
	}
	plan, err := s.repo.GetFeePlanByLabel(ctx.Request.Context(), duration)
	if err != nil {
		s.log.Warn().Str("duration", duration).Msg("unknown fee plan, using default validity")
		return s.defaultYears
	}
	return plan.Years
}

// ApproveMember activates a pending application. Repeating the call on an
// already approved member is harmless.
func (s *service) ApproveMember(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "approve_member"); err != nil {
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
	member, err = s.repo.ApproveMemberTx(ctx.Request.Context(), id, validTill, false)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", id).Time("valid_till", validTill).Msg("member approved")

	if err := s.mail.SendMembershipEmail("approved", member.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to send approval email")
	}

	dto.SuccessResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}

// RejectMember closes a pending application.
func (s *service) RejectMember(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "reject_member"); err != nil {
		s.respondError(ctx, err)
		return
	}

	id := ctx.Param("id")
	member, err := s.repo.GetMemberByID(ctx.Request.Context(), id)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	if err := s.repo.RejectMember(ctx.Request.Context(), id); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", id).Msg("member rejected")

	if err := s.mail.SendMembershipEmail("rejected", member.Email); err != nil {
		s.log.Warn().Err(err).Msg("failed to send rejection email")
	}

	dto.SuccessResponse(ctx, ginext.H{"rejected": id})
}

// DeleteMember removes a member. Their event registrations survive as guest
// rows so seat history stays intact.
func (s *service) DeleteMember(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "delete_member"); err != nil {
		s.respondError(ctx, err)
		return
	}

	id := ctx.Param("id")
	if err := s.repo.DeleteMemberTx(ctx.Request.Context(), id); err != nil {
		s.respondError(ctx, err)
		return
	}

	s.log.Info().Str("member_id", id).Msg("member deleted")
	dto.SuccessResponse(ctx, ginext.H{"deleted": id})
}

// UpdateMember is the admin edit surface, it may touch role, status and
// payment fields.
func (s *service) UpdateMember(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "update_member"); err != nil {
		s.respondError(ctx, err)
		return
	}

	id := ctx.Param("id")
	var req dto.UpdateMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if req.Role != nil && !model.Role(*req.Role).Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown role")
		return
	}
	if req.Status != nil && !model.MemberStatus(*req.Status).Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown status")
		return
	}

	update := model.AdminUpdate{
		Position:   req.Position,
		Duration:   req.Duration,
		PaymentRef: req.PaymentRef,
		AmountPaid: req.AmountPaid,
		ValidTill:  req.ValidTill,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		status := model.MemberStatus(*req.Status)
		update.Status = &status
	}
	if err := s.repo.UpdateMemberAdmin(ctx.Request.Context(), id, update); err != nil {
		s.respondError(ctx, err)
		return
	}

	member, err := s.repo.GetMemberByID(ctx.Request.Context(), id)
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.ToMemberResponse(member, time.Now()))
}

// ListMembers returns the full roster for the admin panel.
func (s *service) ListMembers(ctx *ginext.Context) {
	if _, err := s.guard.RequireElevated(ctx.Request.Context(), actorID(ctx), "list_members"); err != nil {
		s.respondError(ctx, err)
		return
	}

	members, err := s.repo.GetAllMembers(ctx.Request.Context())
	if err != nil {
		s.respondError(ctx, err)
		return
	}

	now := time.Now()
	out := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, dto.ToMemberResponse(&members[i], now))
	}
	dto.SuccessResponse(ctx, out)
}
