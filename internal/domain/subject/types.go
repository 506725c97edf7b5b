// Package subject resolves the group/role attributes of the user named in
// an incoming request (C4). The policy source is the system of record;
// this package only defines the shape and the port the resolver adapts.
package subject

import "context"

// Attributes are the group and role memberships of one username, as
// reported by the policy source's user-lookup endpoint.
type Attributes struct {
	Groups []string
	Roles  []string
}

// Source fetches Attributes for a username directly from the policy
// source, with no caching. Implemented by the ranger outbound adapter.
type Source interface {
	GetUserAttributes(ctx context.Context, username string) (Attributes, error)
}

// Resolver is the cached, request-facing port (C4): it wraps a Source with
// a TTL cache (including negative-result caching for unknown users) and
// request-collapsing for concurrent misses.
type Resolver interface {
	Resolve(ctx context.Context, username string) (Attributes, error)
}
