package model

import "time"

type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberApproved MemberStatus = "approved"
	MemberRejected MemberStatus = "rejected"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleExecom Role = "execom"
)

// Elevated reports whether the role clears privileged operations.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleExecom
}

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin || r == RoleExecom
}

func (s MemberStatus) Valid() bool {
	return s == MemberPending || s == MemberApproved || s == MemberRejected
}

type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
)

const DefaultPosition = "Student Member"

type Member struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	Name          string        `db:"name" json:"name"`
	Email         string        `db:"email" json:"email"`
	Phone         string        `db:"phone" json:"phone"`
	Department    string        `db:"department" json:"department"`
	Year          string        `db:"year" json:"year"`
	Course        string        `db:"course,omitempty" json:"course,omitempty"`
	College       string        `db:"college,omitempty" json:"college,omitempty"`
	Status        MemberStatus  `db:"status" json:"status"`
	Role          Role          `db:"role" json:"role"`
	Position      string        `db:"position,omitempty" json:"position,omitempty"`
	ValidTill     *time.Time    `db:"valid_till" json:"valid_till,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentRef    string        `db:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	AmountPaid    int           `db:"amount_paid" json:"amount_paid"`
	Duration      string        `db:"duration,omitempty" json:"duration,omitempty"`
	ProfilePic    string        `db:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the membership is active at the given instant.
// Expiry is derived from (status, valid_till) on every read, never stored.
func (m *Member) ActiveAt(now time.Time) bool {
	if m.Status != MemberApproved || m.ValidTill == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !today.After(*m.ValidTill)
}

type Event struct {
	ID                    int64     `db:"id" json:"id"`
	Title                 string    `db:"title" json:"title"`
	Description           string    `db:"description,omitempty" json:"description,omitempty"`
	Type                  string    `db:"type,omitempty" json:"type,omitempty"`
	Date                  time.Time `db:"date" json:"date"`
	Time                  string    `db:"time,omitempty" json:"time,omitempty"`
	Location              string    `db:"location,omitempty" json:"location,omitempty"`
	TotalSeats            int       `db:"total_seats" json:"total_seats"`
	IsPaid                bool      `db:"is_paid" json:"is_paid"`
	FeeAmount             int       `db:"fee_amount" json:"fee_amount"`
	PaymentTimeoutMinutes int       `db:"payment_timeout_minutes" json:"payment_timeout_minutes"`
	DisplayOrder          int       `db:"display_order" json:"display_order"`
	ImageURL              string    `db:"image_url,omitempty" json:"image_url,omitempty"`
	WhatsappLink          string    `db:"whatsapp_link,omitempty" json:"whatsapp_link,omitempty"`
	ExternalLink          string    `db:"external_link,omitempty" json:"external_link,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// EndedAt reports whether the event date lies before the given instant's day.
func (e *Event) EndedAt(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return e.Date.Before(today)
}

type Registration struct {
	ID            int64         `db:"id" json:"id"`
	EventID       int64         `db:"event_id" json:"event_id"`
	MemberID      *string       `db:"member_id" json:"member_id,omitempty"`
	FullName      string        `db:"full_name" json:"full_name"`
	Email         string        `db:"email" json:"email"`
	Phone         string        `db:"phone,omitempty" json:"phone,omitempty"`
	Branch        string        `db:"branch,omitempty" json:"branch,omitempty"`
	Year          string        `db:"year,omitempty" json:"year,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentRef    string        `db:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	AmountPaid    int           `db:"amount_paid" json:"amount_paid"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Guest reports whether the registration carries no linked member identity.
func (r *Registration) Guest() bool {
	return r.MemberID == nil || *r.MemberID == ""
}

type FeePlan struct {
	ID     int64  `db:"id" json:"id"`
	Label  string `db:"label" json:"label"`
	Amount int    `db:"amount" json:"amount"`
	Years  int    `db:"years" json:"years"`
}
