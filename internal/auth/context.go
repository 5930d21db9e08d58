package auth

import (
	"context"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"google.golang.org/grpc/metadata"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID              string
	OrganizationID      string
	Role                model.Role
	AssignedWarehouseID string
	IsSuperuser         bool
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller or nil for anonymous requests.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// GetOrganizationID returns the tenant the request operates on. Superusers
// may pick any organization through the x-organization-id metadata.
func GetOrganizationID(ctx context.Context) string {
	p := FromContext(ctx)
	if p == nil {
		return ""
	}
	if p.IsSuperuser {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if val := md.Get("x-organization-id"); len(val) > 0 && val[0] != "" {
				return val[0]
			}
		}
	}
	return p.OrganizationID
}

func GetUserID(ctx context.Context) string {
	if p := FromContext(ctx); p != nil {
		return p.UserID
	}
	return ""
}

// Languages returns the accept-language metadata values, if any.
func Languages(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	return md.Get("accept-language")
}

// System returns ctx carrying the superuser principal background jobs and
// consumers act as within organizationID.
func System(ctx context.Context, organizationID string) context.Context {
	return WithPrincipal(ctx, &Principal{OrganizationID: organizationID, IsSuperuser: true})
}
