package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"addrcore/internal/model"
	"addrcore/migrations"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const (
	patternsTable = "detail_patterns"
	learnedTable  = "learned_corrections"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresRepository stores detail patterns and learned corrections
type PostgresRepository struct {
	db     *sqlx.DB
	logger *slog.Logger

	// compiled pattern cache keyed by regex source
	regexCache sync.Map
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, logger *slog.Logger) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresRepositoryFromDB(db, logger), nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate applies the embedded goose migrations
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, r.db.DB, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// FindByPattern returns the highest-priority active pattern of the class
// matching detail, with detail rewritten by the pattern's replacement
// template ($1-style group references).
func (r *PostgresRepository) FindByPattern(ctx context.Context, detail string, class model.BuildingClass) (*model.PatternMatch, error) {
	query, args, err := psql.
		Select("id", "building_class", "pattern_regex", "replacement", "label", "priority").
		From(patternsTable).
		Where(squirrel.Eq{"building_class": class, "is_active": true}).
		OrderBy("priority DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern query: %w", err)
	}

	var patterns []model.DetailPattern
	if err := r.db.SelectContext(ctx, &patterns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}

	for _, p := range patterns {
		re, err := r.compile(p.PatternRegex)
		if err != nil {
			// Rejected at insert time; rows written by hand may still be broken.
			r.logger.WarnContext(ctx, "skipping stored pattern that does not compile",
				slog.Int64("pattern_id", p.ID),
				slog.String("pattern_regex", p.PatternRegex),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !re.MatchString(detail) {
			continue
		}
		converted := strings.TrimSpace(re.ReplaceAllString(detail, p.Replacement))
		if converted == "" {
			continue
		}
		return &model.PatternMatch{
			PatternRegex:    p.PatternRegex,
			CorrectedDetail: converted,
			Label:           p.Label,
		}, nil
	}
	return nil, nil
}

func (r *PostgresRepository) compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := r.regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	r.regexCache.Store(pattern, re)
	return re, nil
}

// FindLearned looks up a prior correction of the exact raw detail
func (r *PostgresRepository) FindLearned(ctx context.Context, detail string, class model.BuildingClass) (*model.LearnedCorrection, error) {
	query, args, err := psql.
		Select("original_detail", "corrected_detail", "building_class", "correction_type", "confidence", "occurrence_count").
		From(learnedTable).
		Where(squirrel.Eq{"original_detail": detail, "building_class": class}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build learned query: %w", err)
	}

	var learned model.LearnedCorrection
	if err := r.db.GetContext(ctx, &learned, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get learned correction: %w", err)
	}
	return &learned, nil
}

// SaveLearned upserts a correction; repeated saves bump occurrence_count
func (r *PostgresRepository) SaveLearned(ctx context.Context, original, corrected string, class model.BuildingClass, correctionType string, confidence float64) error {
	query, args, err := psql.
		Insert(learnedTable).
		Columns("original_detail", "corrected_detail", "building_class", "correction_type", "confidence").
		Values(original, corrected, class, correctionType, confidence).
		Suffix(`ON CONFLICT (original_detail, building_class) DO UPDATE SET
			corrected_detail = EXCLUDED.corrected_detail,
			correction_type  = EXCLUDED.correction_type,
			confidence       = EXCLUDED.confidence,
			occurrence_count = learned_corrections.occurrence_count + 1,
			updated_at       = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build learned upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save learned correction: %w", err)
	}
	return nil
}

// BatchUpsertPatterns registers patterns in one transaction. Rows that fail
// validation or the insert itself are reported and skipped; the rest commit.
func (r *PostgresRepository) BatchUpsertPatterns(ctx context.Context, patterns []model.DetailPattern) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO detail_patterns (building_class, pattern_regex, replacement, label, priority)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (building_class, pattern_regex) DO UPDATE SET
			replacement = EXCLUDED.replacement,
			label       = EXCLUDED.label,
			priority    = EXCLUDED.priority,
			is_active   = true,
			updated_at  = NOW()
	`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for i, p := range patterns {
		if err := ValidatePattern(p); err != nil {
			errs = append(errs, fmt.Sprintf("pattern %d: %v", i, err))
			continue
		}
		if err := upsertRow(ctx, tx, stmt, p); err != nil {
			errs = append(errs, fmt.Sprintf("pattern %d: %v", i, err))
			if errors.Is(err, errTxBroken) {
				return 0, errs
			}
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

var errTxBroken = errors.New("transaction unusable")

// upsertRow runs one insert under a savepoint so a failed row does not
// abort the surrounding transaction.
func upsertRow(ctx context.Context, tx *sqlx.Tx, stmt *sqlx.Stmt, p model.DetailPattern) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT pattern_row"); err != nil {
		return fmt.Errorf("%w: savepoint: %v", errTxBroken, err)
	}
	if _, err := stmt.ExecContext(ctx, p.BuildingClass, p.PatternRegex, p.Replacement, p.Label, p.Priority); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT pattern_row"); rbErr != nil {
			return fmt.Errorf("%w: %v (rollback: %v)", errTxBroken, err, rbErr)
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT pattern_row"); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", errTxBroken, err)
	}
	return nil
}

// ValidatePattern checks a pattern before it is stored
func ValidatePattern(p model.DetailPattern) error {
	switch p.BuildingClass {
	case model.BuildingStrictApartment, model.BuildingRelaxedApartment, model.BuildingGeneral:
	default:
		return fmt.Errorf("unknown building class %q", p.BuildingClass)
	}
	if strings.TrimSpace(p.PatternRegex) == "" {
		return errors.New("empty pattern_regex")
	}
	if _, err := regexp.Compile(p.PatternRegex); err != nil {
		return fmt.Errorf("invalid pattern_regex: %w", err)
	}
	return nil
}
