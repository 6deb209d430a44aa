package auth

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
)

// ErrUnknownActor is returned by resolvers when the presented identity does not exist.
var ErrUnknownActor = errors.New("unknown actor")

// Actor is the authenticated caller of a request.
type Actor struct {
	Role     Role
	ID       string
	IDNumber string
	FullName string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may change resources owned by the
// instructor with the given ID number.
func (a Actor) CanManage(instructorIDNumber string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleInstructor && a.IDNumber == instructorIDNumber
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
