// Package guard resolves the caller's role from the members table at the
// time of each call and clears or denies privileged operations. It never
// trusts a client-supplied role claim and keeps no decision cache, so a
// role change takes effect on the very next mutation.
package guard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"clubhub/internal/model"
	"clubhub/internal/repo"
)

var (
	// ErrNotAuthorized means the caller's identity is missing or does not
	// resolve to a member record.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrForbidden means the identity resolved but the role is not in the
	// accepted set for the operation.
	ErrForbidden = errors.New("forbidden")
)

// MemberSource is the slice of the repository the guard reads from.
type MemberSource interface {
	GetMemberByUserID(ctx context.Context, userID string) (*model.Member, error)
}

type Guard struct {
	members MemberSource
	log     *zerolog.Logger
}

func New(members MemberSource, log *zerolog.Logger) *Guard {
	return &Guard{members: members, log: log}
}

// Require re-resolves the actor's role and returns the member record when
// it matches one of the accepted roles. Failures carry no side effects;
// denied attempts are logged with actor identity and operation only.
func (g *Guard) Require(ctx context.Context, actorID, op string, roles ...model.Role) (*model.Member, error) {
	if actorID == "" {
		g.deny(actorID, op, "no identity")
		return nil, ErrNotAuthorized
	}

	m, err := g.members.GetMemberByUserID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repo.ErrMemberNotFound) {
			g.deny(actorID, op, "unknown identity")
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	for _, role := range roles {
		if m.Role == role {
			return m, nil
		}
	}

	g.deny(actorID, op, "insufficient role")
	return nil, ErrForbidden
}

// RequireElevated clears admin and execom actors.
func (g *Guard) RequireElevated(ctx context.Context, actorID, op string) (*model.Member, error) {
	return g.Require(ctx, actorID, op, model.RoleAdmin, model.RoleExecom)
}

func (g *Guard) deny(actorID, op, reason string) {
	g.log.Warn().
		Str("actor", actorID).
		Str("operation", op).
		Str("reason", reason).
		Msg("authorization denied")
}
