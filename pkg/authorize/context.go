package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext extracts the GroupSubject (user ID) from the request claims.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	userID, ok := reqctx.UserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return GroupSubject(userID.String()), nil
}

// DomainFromContext returns the business domain of the caller.
func DomainFromContext(ctx context.Context) (Domain, error) {
	owner, ok := reqctx.OwnerFromContext(ctx)
	if !ok {
		return "", ErrNoSubjectInContext
	}
	return BusinessDomain(owner.String()), nil
}

// RequestFromContext resolves both halves of an enforcement request.
func RequestFromContext(ctx context.Context) (GroupSubject, Domain, error) {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		return "", "", err
	}
	domain, err := DomainFromContext(ctx)
	if err != nil {
		return "", "", err
	}
	return subject, domain, nil
}
