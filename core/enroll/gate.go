package enroll

import (
	"context"

	"github.com/pkg/errors"

	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/user"
)

var ErrForbidden = errors.New("permission denied")

// InstructorResolver maps an acting identity to its Instructor record.
// catalog.Repository satisfies it.
type InstructorResolver interface {
	GetInstructorByUserID(ctx context.Context, userID int) (catalog.Instructor, error)
}

// Gate is the authorization predicate for every instructor-side mutation on a
// course: resolve the identity to exactly one Instructor record, then require
// (instructor, course) ACL membership. It performs no side effects.
type Gate struct {
	resolver InstructorResolver
	acl      ACLRepository
}

func NewGate(resolver InstructorResolver, acl ACLRepository) *Gate {
	return &Gate{resolver: resolver, acl: acl}
}

// Authorize returns the Instructor record of the acting user when the gate
// passes. An instructor-role identity with no Instructor row cannot act
// (catalog.ErrInstructorNotFound); any other role, or an instructor without
// ACL membership on the course, gets ErrForbidden.
func (g *Gate) Authorize(ctx context.Context, actor user.User, courseID int) (catalog.Instructor, error) {
	if !actor.IsInstructor() {
		return catalog.Instructor{}, ErrForbidden
	}
	inst, err := g.resolver.GetInstructorByUserID(ctx, actor.ID)
	if err != nil {
		return catalog.Instructor{}, err
	}
	ok, err := g.acl.HasCourse(ctx, inst.ID, courseID)
	if err != nil {
		return catalog.Instructor{}, errors.Wrap(err, "checking course ACL")
	}
	if !ok {
		return catalog.Instructor{}, ErrForbidden
	}
	return inst, nil
}
