package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/leapstack-labs/sqlshape/internal/group"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
	"github.com/leapstack-labs/sqlshape/pkg/token"
)

// DefaultLimit bounds how many pg_stat_statements rows are read.
const DefaultLimit = 1000

const statStatementsQuery = `SELECT query FROM pg_stat_statements ORDER BY calls DESC LIMIT $1`

// Postgres reads the most frequently called statements recorded by the
// pg_stat_statements extension.
type Postgres struct {
	DB     *sql.DB
	Limit  int
	Logger *slog.Logger
}

// OpenPostgres connects to dsn with the pgx driver and verifies the
// connection.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Debug("connected to postgres")
	return &Postgres{DB: db, Limit: DefaultLimit, Logger: logger}, nil
}

// Close closes the underlying connection.
func (p *Postgres) Close() error {
	if p.DB == nil {
		return nil
	}
	return p.DB.Close()
}

// Statements returns the recorded SELECT statements, most called first.
// Line holds the 1-based rank of the row. Other statement kinds are skipped.
func (p *Postgres) Statements(ctx context.Context) ([]group.Statement, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := p.DB.QueryContext(ctx, statStatementsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pg_stat_statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stmts []group.Statement
	rank, skipped := 0, 0
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return nil, fmt.Errorf("failed to scan pg_stat_statements row: %w", err)
		}
		rank++
		if !isSelect(query) {
			skipped++
			continue
		}
		stmts = append(stmts, group.Statement{Line: rank, SQL: query})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pg_stat_statements: %w", err)
	}

	logger.Debug("read pg_stat_statements", slog.Int("statements", len(stmts)), slog.Int("skipped", skipped))
	return stmts, nil
}

// isSelect reports whether text starts with SELECT or WITH.
func isSelect(text string) bool {
	l := shape.NewLexer(text)
	for {
		tok, ok := l.NextToken()
		if !ok {
			return false
		}
		if tok.IsTrivia() || tok.IsPunct("(") {
			continue
		}
		return tok.Kind == token.Keyword && tok.IsKeyword("SELECT", "WITH")
	}
}
