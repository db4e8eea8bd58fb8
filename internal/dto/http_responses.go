package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound         = "EVENT_NOT_FOUND"
	MemberNotFound        = "MEMBER_NOT_FOUND"
	RegistrationNotFound  = "REGISTRATION_NOT_FOUND"
	RegistrationDuplicate = "REGISTRATION_DUPLICATE"
	MemberDuplicate       = "MEMBER_DUPLICATE"
	EventClosed           = "EVENT_CLOSED"
	SoldOut               = "SOLD_OUT"
	InvalidPaymentRef     = "INVALID_PAYMENT_REF"
	PaymentNotPending     = "PAYMENT_NOT_PENDING"
	NotAuthorized         = "NOT_AUTHORIZED"
	Forbidden             = "FORBIDDEN"
	ConflictRetry         = "CONFLICT_RETRY"
)

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

// Requests

type CreateEventRequest struct {
	Title                 string    `json:"title" validate:"required,min=3,max=255"`
	Description           string    `json:"description"`
	Type                  string    `json:"type"`
	Date                  time.Time `json:"date" validate:"required"`
	Time                  string    `json:"time"`
	Location              string    `json:"location"`
	TotalSeats            int       `json:"total_seats" validate:"gte=0"`
	IsPaid                bool      `json:"is_paid"`
	FeeAmount             int       `json:"fee_amount" validate:"gte=0"`
	PaymentTimeoutMinutes int       `json:"payment_timeout_minutes" validate:"gte=0"`
	DisplayOrder          int       `json:"display_order"`
	ImageURL              string    `json:"image_url"`
	WhatsappLink          string    `json:"whatsapp_link"`
	ExternalLink          string    `json:"external_link"`
}

type RegisterRequest struct {
	FullName   string `json:"full_name" validate:"required,min=3,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Branch     string `json:"branch"`
	Year       string `json:"year"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

type SignupRequest struct {
	Name       string `json:"name" validate:"required,min=3,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Department string `json:"department" validate:"required"`
	Year       string `json:"year" validate:"required"`
	Course     string `json:"course"`
	College    string `json:"college"`
}

type SubmitPaymentRequest struct {
	PaymentRef string `json:"payment_ref" validate:"required"`
	Amount     int    `json:"amount" validate:"gte=0"`
	Plan       string `json:"plan,omitempty"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Year       *string `json:"year,omitempty"`
	Course     *string `json:"course,omitempty"`
}

type UpdateMemberRequest struct {
	Role       *string    `json:"role,omitempty"`
	Status     *string    `json:"status,omitempty"`
	Position   *string    `json:"position,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
	PaymentRef *string    `json:"payment_ref,omitempty"`
	AmountPaid *int       `json:"amount_paid,omitempty"`
	ValidTill  *time.Time `json:"valid_till,omitempty"`
}

// Responses

type EventResponse struct {
	ID                    int64     `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description,omitempty"`
	Type                  string    `json:"type,omitempty"`
	Date                  time.Time `json:"date"`
	Time                  string    `json:"time,omitempty"`
	Location              string    `json:"location,omitempty"`
	TotalSeats            int       `json:"total_seats"`
	AvailableSeats        int       `json:"available_seats"`
	IsPaid                bool      `json:"is_paid"`
	FeeAmount             int       `json:"fee_amount"`
	PaymentTimeoutMinutes int       `json:"payment_timeout_minutes"`
	DisplayOrder          int       `json:"display_order"`
	ImageURL              string    `json:"image_url,omitempty"`
	WhatsappLink          string    `json:"whatsapp_link,omitempty"`
	ExternalLink          string    `json:"external_link,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type RegistrationResponse struct {
	ID            int64     `json:"id"`
	EventID       int64     `json:"event_id"`
	MemberID      *string   `json:"member_id,omitempty"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	Year          string    `json:"year,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	PaymentRef    string    `json:"payment_ref,omitempty"`
	AmountPaid    int       `json:"amount_paid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MemberResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Department    string     `json:"department"`
	Year          string     `json:"year"`
	Course        string     `json:"course,omitempty"`
	College       string     `json:"college,omitempty"`
	Status        string     `json:"status"`
	Role          string     `json:"role"`
	Position      string     `json:"position,omitempty"`
	ValidTill     *time.Time `json:"valid_till,omitempty"`
	Active        bool       `json:"active"`
	PaymentStatus string     `json:"payment_status"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	AmountPaid    int        `json:"amount_paid"`
	Duration      string     `json:"duration,omitempty"`
	ProfilePic    string     `json:"profile_pic,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type VerifyMemberResponse struct {
	Status     string     `json:"status"` // valid | expired | not_approved | invalid
	Name       string     `json:"name,omitempty"`
	Department string     `json:"department,omitempty"`
	Year       string     `json:"year,omitempty"`
	ValidTill  *time.Time `json:"valid_till,omitempty"`
	ProfilePic string     `json:"profile_pic,omitempty"`
}

type SeatsResponse struct {
	EventID        int64 `json:"event_id"`
	TotalSeats     int   `json:"total_seats"`
	AvailableSeats int   `json:"available_seats"`
}

// PaymentExpiryMessage rides the delayed exchange; when it fires, a still
// pending payment frees its seat.
type PaymentExpiryMessage struct {
	RegistrationID int64     `json:"registration_id"`
	EventID        int64     `json:"event_id"`
	ExpireAt       time.Time `json:"expire_at"`
}

// Error helpers

func BadResponseError(c *ginext.Context, code, desc string) {
	respondError(c, 400, code, desc)
}

func ConflictResponseError(c *ginext.Context, code, desc string) {
	respondError(c, 409, code, desc)
}

func NotFoundError(c *ginext.Context, code, desc string) {
	respondError(c, 404, code, desc)
}

func NotAuthorizedError(c *ginext.Context) {
	respondError(c, 401, NotAuthorized, "Sign in required")
}

func ForbiddenError(c *ginext.Context) {
	respondError(c, 403, Forbidden, "Not permitted")
}

func InternalServerError(c *ginext.Context) {
	respondError(c, 500, ServiceUnavailable, InternalError)
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func MemberNotFoundError(c *ginext.Context) {
	NotFoundError(c, MemberNotFound, "Member not found")
}

func RegistrationNotFoundError(c *ginext.Context) {
	NotFoundError(c, RegistrationNotFound, "Registration not found")
}

func RegistrationDuplicateError(c *ginext.Context) {
	ConflictResponseError(c, RegistrationDuplicate, "You have already registered for this event")
}

func SoldOutError(c *ginext.Context) {
	ConflictResponseError(c, SoldOut, "No seats remaining")
}

func EventClosedError(c *ginext.Context) {
	ConflictResponseError(c, EventClosed, "This event has ended")
}

func respondError(c *ginext.Context, status int, code, desc string) {
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
