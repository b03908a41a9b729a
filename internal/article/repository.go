package article

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/errkit/database"
	"github.com/kbukum/errkit/database/query"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/observability"
)

const resource = "article"

// ListQuery configures sorting for article listings.
var ListQuery = query.Config{
	AllowedSortFields: []string{"title", "created_at", "updated_at"},
	DefaultSort:       "created_at",
	DefaultOrder:      "desc",
}

// Repository persists articles.
type Repository interface {
	List(ctx context.Context, p query.Params) ([]Article, int, error)
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	Create(ctx context.Context, a *Article) error
	// Update stores title and body when a.Version is still current, then
	// increments a.Version. A missing row or stale version is NotFound.
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id int64) error
}

// SQLRepository is a Repository on SQLite.
type SQLRepository struct {
	db  *database.DB
	now func() time.Time
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a repository over db. The articles schema must
// already be migrated (see Migrations).
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const selectColumns = `id, slug, title, body, author_id, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var created, updated int64
	if err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Body, &a.AuthorID, &a.Version, &created, &updated); err != nil {
		return nil, err
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	a.UpdatedAt = time.UnixMilli(updated).UTC()
	return &a, nil
}

// List returns one page of articles and the total count.
func (r *SQLRepository) List(ctx context.Context, p query.Params) ([]Article, int, error) {
	where, args := "", []any{}
	if p.Search != "" {
		where = ` WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'`
		like := "%" + likeEscaper.Replace(p.Search) + "%"
		args = append(args, like, like)
	}

	var total int
	if err := r.db.SQL.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	q := "SELECT " + selectColumns + " FROM articles" + where
	if order := p.OrderBy(ListQuery); order != "" {
		q += " ORDER BY " + order + ", id"
	}
	q += " LIMIT ? OFFSET ?"

	rows, err := r.db.SQL.QueryContext(ctx, q, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]Article, 0, p.PerPage)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, total, nil
}

// FindBySlug returns the article or a NotFound error.
func (r *SQLRepository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	row := r.db.SQL.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM articles WHERE slug = ?", slug)
	a, err := scanArticle(row)
	if err != nil {
		return nil, database.FromDatabase(err, resource)
	}
	return a, nil
}

// Create inserts a and fills its id, version and timestamps. A taken slug is
// DuplicateResource.
func (r *SQLRepository) Create(ctx context.Context, a *Article) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO articles (slug, title, body, author_id, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		a.Slug, a.Title, a.Body, a.AuthorID, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if database.IsDuplicateError(err) {
			return apperrors.DuplicateResource("An article with this slug already exists.").WithCause(err)
		}
		return database.FromDatabase(err, resource)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("article id: %w", err)
	}
	a.ID, a.Version, a.CreatedAt, a.UpdatedAt = id, 1, now, now
	return nil
}

// Update applies an optimistic update guarded by a.Version.
func (r *SQLRepository) Update(ctx context.Context, a *Article) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.SQL.ExecContext(ctx,
		`UPDATE articles SET title = ?, body = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		a.Title, a.Body, now.UnixMilli(), a.ID, a.Version,
	)
	if err != nil {
		return database.FromDatabase(err, resource)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	a.Version++
	a.UpdatedAt = now
	return nil
}

// Delete removes the article with id.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.SQL.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return database.FromDatabase(err, resource)
	}
	return expectOneRow(res)
}

// CheckHealth reports the health of the backing database.
func (r *SQLRepository) CheckHealth(ctx context.Context) observability.Health {
	h := r.db.CheckHealth(ctx)
	h.Name = "article-repository"
	return h
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return database.FromDatabase(sql.ErrNoRows, resource)
	}
	return nil
}
