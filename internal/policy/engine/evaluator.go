package engine

import "context"

// Authorizer decides whether a caller holding roles may invoke a gRPC full method.
type Authorizer interface {
	// Allow returns true when the method requires no role or roles contains one the method accepts.
	Allow(ctx context.Context, method string, roles []string) (bool, error)
}
