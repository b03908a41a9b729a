// Package authctx carries authenticated claims on a request context.
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get[*jwt.UserClaims](ctx)
//	claims, err := authctx.GetOrError[*jwt.UserClaims](ctx) // Unauthorized when absent
package authctx

import (
	"context"

	apperrors "github.com/kbukum/errkit/errors"
)

type contextKey struct{}

// Set stores claims on ctx.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Get returns the claims on ctx if present and of type T.
func Get[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(contextKey{}).(T)
	return claims, ok
}

// MustGet is Get for handlers behind the auth middleware. It panics when
// claims are missing.
func MustGet[T any](ctx context.Context) T {
	claims, ok := Get[T](ctx)
	if !ok {
		panic("authctx: claims not found in context or wrong type")
	}
	return claims
}

// GetOrError returns the claims on ctx, or an Unauthorized AppError.
func GetOrError[T any](ctx context.Context) (T, error) {
	claims, ok := Get[T](ctx)
	if !ok {
		return claims, apperrors.Unauthorized("")
	}
	return claims, nil
}
