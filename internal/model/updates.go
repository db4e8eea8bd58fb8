package model

import "time"

// ProfileUpdate carries the self-service member fields. Role, status,
// position and payment fields are deliberately absent; those belong to
// AdminUpdate and are only reachable through a cleared actor.
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Department *string
	Year       *string
	Course     *string
	ProfilePic *string
}

// AdminUpdate carries the fields only a cleared actor may write.
type AdminUpdate struct {
	Role       *Role
	Status     *MemberStatus
	Position   *string
	Duration   *string
	PaymentRef *string
	AmountPaid *int
	ValidTill  *time.Time
}
