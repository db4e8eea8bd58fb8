package service

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/dto"
	"clubhub/internal/guard"
	"clubhub/internal/mailer"
	"clubhub/internal/rabbit"
	"clubhub/internal/repo"
	"clubhub/internal/storage"
	"clubhub/pkg/validator"
)

// ActorKey is where the identity middleware leaves the caller's opaque
// identity. Empty means unauthenticated; role is never read from here.
const ActorKey = "actor_id"

type Service interface {
	// public
	ListEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	SeatsRemaining(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	CancelRegistration(ctx *ginext.Context)
	SubmitRegistrationPayment(ctx *ginext.Context)
	Signup(ctx *ginext.Context)
	SubmitMembershipPayment(ctx *ginext.Context)
	GetMemberStatus(ctx *ginext.Context)
	UpdateProfile(ctx *ginext.Context)
	UploadAvatar(ctx *ginext.Context)
	VerifyMember(ctx *ginext.Context)
	ListFeePlans(ctx *ginext.Context)

	// admin, guard-gated
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	ListRegistrations(ctx *ginext.Context)
	VerifyRegistrationPayment(ctx *ginext.Context)
	VerifyMemberPayment(ctx *ginext.Context)
	ApproveMember(ctx *ginext.Context)
	RejectMember(ctx *ginext.Context)
	DeleteMember(ctx *ginext.Context)
	UpdateMember(ctx *ginext.Context)
	ListMembers(ctx *ginext.Context)
}

type service struct {
	repo         repo.Repository
	guard        *guard.Guard
	log          *zerolog.Logger
	rbt          rabbit.Publisher
	mail         mailer.Mailer
	avatars      storage.AvatarStore
	refValid     func(string) error
	defaultYears int
}

func NewService(
	r repo.Repository,
	g *guard.Guard,
	logger *zerolog.Logger,
	rbt rabbit.Publisher,
	mail mailer.Mailer,
	avatars storage.AvatarStore,
	refValid func(string) error,
) Service {
	if refValid == nil {
		refValid = validator.PaymentRef
	}
	return &service{
		repo:         r,
		guard:        g,
		log:          logger,
		rbt:          rbt,
		mail:         mail,
		avatars:      avatars,
		refValid:     refValid,
		defaultYears: 1,
	}
}

func actorID(ctx *ginext.Context) string {
	return ctx.GetString(ActorKey)
}

// respondError maps repo/guard sentinels onto the HTTP taxonomy. Terminal
// kinds surface unchanged; only conflict/unavailable are marked retryable.
func (s *service) respondError(ctx *ginext.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrEventNotFound):
		dto.EventNotFoundError(ctx)
	case errors.Is(err, repo.ErrMemberNotFound):
		dto.MemberNotFoundError(ctx)
	case errors.Is(err, repo.ErrRegistrationNotFound):
		dto.RegistrationNotFoundError(ctx)
	case errors.Is(err, repo.ErrFeePlanNotFound):
		dto.NotFoundError(ctx, dto.FieldIncorrect, "Unknown fee plan")
	case errors.Is(err, repo.ErrEventClosed):
		dto.EventClosedError(ctx)
	case errors.Is(err, repo.ErrSoldOut):
		dto.SoldOutError(ctx)
	case errors.Is(err, repo.ErrDuplicateRegistration):
		dto.RegistrationDuplicateError(ctx)
	case errors.Is(err, repo.ErrDuplicateMember):
		dto.ConflictResponseError(ctx, dto.MemberDuplicate, "A member with this email or account already exists")
	case errors.Is(err, repo.ErrPaymentNotPending):
		dto.ConflictResponseError(ctx, dto.PaymentNotPending, "Payment is not pending")
	case errors.Is(err, repo.ErrMemberNotPending):
		dto.ConflictResponseError(ctx, dto.FieldIncorrect, "Member is not pending")
	case errors.Is(err, repo.ErrSeatsBelowRegistered):
		dto.ConflictResponseError(ctx, dto.FieldIncorrect, "total_seats is below the current registration count")
	case errors.Is(err, guard.ErrNotAuthorized):
		dto.NotAuthorizedError(ctx)
	case errors.Is(err, guard.ErrForbidden):
		dto.ForbiddenError(ctx)
	case errors.Is(err, repo.ErrConflictRetryable):
		dto.ConflictResponseError(ctx, dto.ConflictRetry, "Write conflict, please retry")
	default:
		s.log.Error().Err(err).Msg("request failed")
		dto.InternalServerError(ctx)
	}
}
