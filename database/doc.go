// Package database opens and manages an embedded SQLite database
// (modernc.org/sqlite, no cgo) with connection retry, pooling, health checks,
// transactions, embedded migrations and translation of driver errors into the
// errkit taxonomy.
//
// # Quick Start
//
//	db, err := database.Open(ctx, database.Config{Path: "articles.db"}, log)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := migration.Up(db.SQL, migrationsFS, "migrations"); err != nil {
//	    return err
//	}
//
// # Subpackages
//
//   - migration: versioned migrations from an fs.FS using golang-migrate
//   - query: page/per_page/sort parsing for list endpoints
package database
