package article

import (
	"context"

	"github.com/kbukum/errkit/authz"
	"github.com/kbukum/errkit/database/query"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
	"github.com/kbukum/errkit/validation"
)

const (
	msgNotOwner = "You may only change your own articles."
	msgStale    = "The article was modified by someone else. Reload and try again."
)

// PermModerate lets a role change articles it does not own.
const PermModerate = "article:moderate"

// Actor is the caller of a write operation.
type Actor struct {
	ID   string
	Role string
}

// Service holds the article business rules: input validation, ownership and
// optimistic versioning.
type Service struct {
	repo    Repository
	checker authz.Checker
	log     *logger.Logger
}

// NewService creates a Service. A nil log uses the "article" component of
// the global logger.
func NewService(repo Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.WithComponent("article")
	}
	return &Service{repo: repo, checker: authz.NewMapChecker(nil), log: log}
}

// WithChecker sets the permission checker consulted for PermModerate.
// Without one only authors may change their articles.
func (s *Service) WithChecker(c authz.Checker) *Service {
	if c != nil {
		s.checker = c
	}
	return s
}

// List returns one page of articles and the total count.
func (s *Service) List(ctx context.Context, p query.Params) ([]Article, int, error) {
	ctx, span := observability.StartSpan(ctx, "article.List")
	defer span.End()
	return s.repo.List(ctx, p)
}

// Get returns the article with slug.
func (s *Service) Get(ctx context.Context, slug string) (*Article, error) {
	ctx, span := observability.StartSpan(ctx, "article.Get")
	defer span.End()
	return s.repo.FindBySlug(ctx, slug)
}

// Create validates in and stores a new article owned by authorID.
func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (*Article, error) {
	ctx, span := observability.StartSpan(ctx, "article.Create")
	defer span.End()

	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if err := validation.New().
		Required("slug", slug).
		Pattern("slug", slug, `^[a-z0-9]+(-[a-z0-9]+)*$`).
		Validate(); err != nil {
		return nil, err
	}

	a := &Article{Slug: slug, Title: in.Title, Body: in.Body, AuthorID: authorID}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("Article created", map[string]interface{}{
		"slug": a.Slug,
		"id":   a.ID,
	})
	return a, nil
}

// Update replaces title and body of the article with slug. Only the author
// or a moderator may update, and in.Version must match the stored version.
func (s *Service) Update(ctx context.Context, actor Actor, slug string, in UpdateInput) (*Article, error) {
	ctx, span := observability.StartSpan(ctx, "article.Update")
	defer span.End()

	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	a, err := s.owned(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if a.Version != in.Version {
		return nil, apperrors.Conflict(msgStale)
	}

	a.Title, a.Body = in.Title, in.Body
	if err := s.repo.Update(ctx, a); err != nil {
		// Lost the race against a concurrent writer.
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Translate(err, apperrors.KindConflict, msgStale)
		}
		return nil, err
	}
	return a, nil
}

// Delete removes the article with slug. Only the author or a moderator may
// delete.
func (s *Service) Delete(ctx context.Context, actor Actor, slug string) error {
	ctx, span := observability.StartSpan(ctx, "article.Delete")
	defer span.End()

	a, err := s.owned(ctx, actor, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}

	s.log.WithContext(ctx).Info("Article deleted", map[string]interface{}{
		"slug":  a.Slug,
		"actor": actor.ID,
	})
	return nil
}

func (s *Service) owned(ctx context.Context, actor Actor, slug string) (*Article, error) {
	a, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != actor.ID && !s.checker.HasPermission(actor.Role, PermModerate) {
		return nil, apperrors.Forbidden(msgNotOwner)
	}
	return a, nil
}
