package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// Identity is the authenticated caller attached to each request. Token
// issuance itself is external; the platform only consumes the resolved
// identity.
type Identity struct {
	UserID string
	Name   string
	Role   types.Role
	OrgID  string
}

type ctxKey struct{}

// ContextWithIdentity returns a context carrying the identity
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity stored in the context
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	if !ok || id == nil {
		return nil, goerr.New("no identity in context")
	}
	return id, nil
}
