package article

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/kbukum/errkit/authz"
	"github.com/kbukum/errkit/database"
	"github.com/kbukum/errkit/database/migration"
	"github.com/kbukum/errkit/database/query"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/validation"
)

var discard = logger.NewWithWriter(io.Discard, &logger.Config{Level: "error", Format: "json"}, "test")

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{}, discard)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migration.Up(db.SQL, Migrations, MigrationsPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := NewSQLRepository(db)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Errors, done right!  ", "errors-done-right"},
		{"Çalışma Notları", "calisma-notlari"},
		{"İstanbul Günlüğü", "istanbul-gunlugu"},
		{"Go 1.25 release", "go-1-25-release"},
		{"日本語", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepository_CreateFindDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := &Article{Slug: "first", Title: "First", Body: "body", AuthorID: "u1"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == 0 || a.Version != 1 || a.CreatedAt.IsZero() {
		t.Errorf("create did not fill fields: %+v", a)
	}

	got, err := repo.FindBySlug(ctx, "first")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Title != "First" || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("found %+v, want %+v", got, a)
	}

	err = repo.Create(ctx, &Article{Slug: "first", Title: "Again", Body: "b", AuthorID: "u2"})
	if !apperrors.IsKind(err, apperrors.KindDuplicateResource) {
		t.Errorf("expected DuplicateResource, got %v", err)
	}

	_, err = repo.FindBySlug(ctx, "missing")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestRepository_UpdateVersionGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := &Article{Slug: "s", Title: "T", Body: "B", AuthorID: "u1"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}

	stale := *a
	a.Title = "T2"
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("version = %d, want 2", a.Version)
	}

	stale.Title = "lost"
	if err := repo.Update(ctx, &stale); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("stale update: expected NotFound, got %v", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, a.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("second delete: expected NotFound, got %v", err)
	}
}

func TestRepository_ListPaginationAndSearch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, title := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo 100%"} {
		if err := repo.Create(ctx, &Article{Slug: Slugify(title), Title: title, Body: "text", AuthorID: "u1"}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		params    query.Params
		wantTotal int
		wantFirst string
		wantLen   int
	}{
		{"newest first", query.Params{Page: 1, PerPage: 2, SortBy: "created_at", SortOrder: "desc"}, 5, "Echo 100%", 2},
		{"last page", query.Params{Page: 3, PerPage: 2, SortBy: "created_at", SortOrder: "desc"}, 5, "Alpha", 1},
		{"title asc", query.Params{Page: 1, PerPage: 10, SortBy: "title", SortOrder: "asc"}, 5, "Alpha", 5},
		{"search", query.Params{Page: 1, PerPage: 10, Search: "char"}, 1, "Charlie", 1},
		{"search percent is literal", query.Params{Page: 1, PerPage: 10, Search: "0%"}, 1, "Echo 100%", 1},
		{"past the end", query.Params{Page: 9, PerPage: 10}, 5, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if total != tt.wantTotal || len(items) != tt.wantLen {
				t.Fatalf("total=%d len=%d, want %d/%d", total, len(items), tt.wantTotal, tt.wantLen)
			}
			if tt.wantLen > 0 && items[0].Title != tt.wantFirst {
				t.Errorf("first = %q, want %q", items[0].Title, tt.wantFirst)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	svc := NewService(newTestRepo(t), discard)
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", CreateInput{Title: "Çalışma Notları", Body: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Slug != "calisma-notlari" || a.AuthorID != "u1" {
		t.Errorf("unexpected article %+v", a)
	}

	tests := []struct {
		name      string
		in        CreateInput
		wantField string
		wantKind  apperrors.Kind
	}{
		{"missing title", CreateInput{Body: "x"}, "title", ""},
		{"missing body", CreateInput{Title: "t"}, "body", ""},
		{"bad slug", CreateInput{Title: "t", Body: "b", Slug: "Not A Slug"}, "slug", ""},
		{"unsluggable title", CreateInput{Title: "日本語", Body: "b"}, "slug", ""},
		{"duplicate", CreateInput{Title: "Çalışma notları", Body: "b"}, "", apperrors.KindDuplicateResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tt.in)
			if tt.wantKind != "" {
				if !apperrors.IsKind(err, tt.wantKind) {
					t.Errorf("expected %s, got %v", tt.wantKind, err)
				}
				return
			}
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if len(verr.FieldErrors().Get(tt.wantField)) == 0 {
				t.Errorf("expected error on %q, got %v", tt.wantField, verr)
			}
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc := NewService(newTestRepo(t), discard)
	ctx := context.Background()
	a, err := svc.Create(ctx, "owner", CreateInput{Title: "Owned", Body: "b"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		user     string
		slug     string
		in       UpdateInput
		wantKind apperrors.Kind
	}{
		{"not owner", "intruder", a.Slug, UpdateInput{Title: "x", Body: "y", Version: 1}, apperrors.KindForbidden},
		{"missing", "owner", "nope", UpdateInput{Title: "x", Body: "y", Version: 1}, apperrors.KindNotFound},
		{"stale version", "owner", a.Slug, UpdateInput{Title: "x", Body: "y", Version: 7}, apperrors.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, Actor{ID: tt.user}, tt.slug, tt.in)
			if !apperrors.IsKind(err, tt.wantKind) {
				t.Errorf("expected %s, got %v", tt.wantKind, err)
			}
		})
	}

	updated, err := svc.Update(ctx, Actor{ID: "owner"}, a.Slug, UpdateInput{Title: "New", Body: "b2", Version: 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 || updated.Title != "New" {
		t.Errorf("unexpected %+v", updated)
	}

	if err := svc.Delete(ctx, Actor{ID: "intruder"}, a.Slug); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Errorf("expected Forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, Actor{ID: "owner"}, a.Slug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, a.Slug); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestService_ModeratorMayChangeOthersArticles(t *testing.T) {
	checker := authz.NewMapChecker(map[string][]string{
		"admin":  {"*:*"},
		"editor": {"article:read"},
	})
	svc := NewService(newTestRepo(t), discard).WithChecker(checker)
	ctx := context.Background()

	a, err := svc.Create(ctx, "owner", CreateInput{Title: "Moderated", Body: "b"})
	if err != nil {
		t.Fatal(err)
	}

	in := UpdateInput{Title: "Edited", Body: "b", Version: 1}
	if _, err := svc.Update(ctx, Actor{ID: "ed", Role: "editor"}, a.Slug, in); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Errorf("editor: expected Forbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, Actor{ID: "root", Role: "admin"}, a.Slug, in)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.AuthorID != "owner" {
		t.Errorf("moderation changed the author to %q", updated.AuthorID)
	}
	if err := svc.Delete(ctx, Actor{ID: "root", Role: "admin"}, a.Slug); err != nil {
		t.Errorf("admin delete: %v", err)
	}
}

// racingRepo loses every optimistic update, as if another writer got there first.
type racingRepo struct {
	Repository
}

func (racingRepo) Update(context.Context, *Article) error {
	return apperrors.NotFound("")
}

func TestService_UpdateLostRaceIsConflict(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(racingRepo{Repository: repo}, discard)
	ctx := context.Background()
	a, err := svc.Create(ctx, "owner", CreateInput{Title: "Race", Body: "b"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, Actor{ID: "owner"}, a.Slug, UpdateInput{Title: "x", Body: "y", Version: 1})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Kind() != apperrors.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if !apperrors.IsKind(errors.Unwrap(appErr), apperrors.KindNotFound) {
		t.Errorf("expected the repository NotFound kept as cause")
	}
}
