// Package article is the demo resource of articles-api: a CRUD skeleton
// layered as Handler -> Service -> Repository. Each layer returns taxonomy
// errors and leaves rendering to the server boundary.
package article

import (
	"embed"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Migrations holds the schema for the articles table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations.
const MigrationsPath = "migrations"

// Article is a published piece of writing owned by its author.
type Article struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"author_id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput is the payload for creating an article. An empty slug is
// derived from the title.
type CreateInput struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
	Slug  string `json:"slug" validate:"omitempty,max=200"`
}

// UpdateInput replaces title and body. Version must match the stored
// version.
type UpdateInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
	Version int    `json:"version" validate:"required,min=1"`
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a title into a lowercase, hyphen separated slug. Accents are
// dropped, so "Çalışma Notları" becomes "calisma-notlari".
func Slugify(title string) string {
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == 'ı':
			r = 'i'
		case r > unicode.MaxASCII:
			r = '-'
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
