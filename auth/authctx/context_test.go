package authctx

import (
	"context"
	"testing"

	apperrors "github.com/kbukum/errkit/errors"
)

type claims struct{ sub string }

func TestGet(t *testing.T) {
	ctx := Set(context.Background(), &claims{sub: "u1"})

	c, ok := Get[*claims](ctx)
	if !ok || c.sub != "u1" {
		t.Fatalf("expected claims, got %v %v", c, ok)
	}
	if _, ok := Get[string](ctx); ok {
		t.Error("wrong type should not match")
	}
}

func TestGetOrError(t *testing.T) {
	_, err := GetOrError[*claims](context.Background())
	if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
		t.Errorf("expected Unauthorized, got %v", err)
	}
}

func TestMustGet_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustGet[*claims](context.Background())
}
