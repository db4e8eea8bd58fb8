package dto

import (
	"time"

	"clubhub/internal/model"
)

func ToEventResponse(e *model.Event, available int) EventResponse {
	return EventResponse{
		ID:                    e.ID,
		Title:                 e.Title,
		Description:           e.Description,
		Type:                  e.Type,
		Date:                  e.Date,
		Time:                  e.Time,
		Location:              e.Location,
		TotalSeats:            e.TotalSeats,
		AvailableSeats:        available,
		IsPaid:                e.IsPaid,
		FeeAmount:             e.FeeAmount,
		PaymentTimeoutMinutes: e.PaymentTimeoutMinutes,
		DisplayOrder:          e.DisplayOrder,
		ImageURL:              e.ImageURL,
		WhatsappLink:          e.WhatsappLink,
		ExternalLink:          e.ExternalLink,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

func ToRegistrationResponse(r *model.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:            r.ID,
		EventID:       r.EventID,
		MemberID:      r.MemberID,
		FullName:      r.FullName,
		Email:         r.Email,
		Phone:         r.Phone,
		Branch:        r.Branch,
		Year:          r.Year,
		PaymentStatus: string(r.PaymentStatus),
		PaymentRef:    r.PaymentRef,
		AmountPaid:    r.AmountPaid,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func ToMemberResponse(m *model.Member, now time.Time) MemberResponse {
	return MemberResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		Department:    m.Department,
		Year:          m.Year,
		Course:        m.Course,
		College:       m.College,
		Status:        string(m.Status),
		Role:          string(m.Role),
		Position:      m.Position,
		ValidTill:     m.ValidTill,
		Active:        m.ActiveAt(now),
		PaymentStatus: string(m.PaymentStatus),
		PaymentRef:    m.PaymentRef,
		AmountPaid:    m.AmountPaid,
		Duration:      m.Duration,
		ProfilePic:    m.ProfilePic,
		CreatedAt:     m.CreatedAt,
	}
}
