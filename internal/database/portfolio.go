package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_filter/internal/models"
)

type PortfolioRepository interface {
	Create(ctx context.Context, p models.Portfolio) error
	AddMembers(ctx context.Context, portfolioID int, userIDs ...string) error
	AddAircraft(ctx context.Context, portfolioID int, aircraftIDs ...int) error
	GetPortfolio(ctx context.Context, portfolioID int, isServiceCaller bool) (models.Portfolio, error)
	LastModified(ctx context.Context, portfolioID int) (time.Time, error)
}

type portfolioRepository struct {
	db *sql.DB
}

func NewPortfolioRepository(db *sql.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// touchAircraftPortfolios moves the watermark of every portfolio holding one
// of the aircraft, invalidating their cached results
func touchAircraftPortfolios(ctx context.Context, ex execer, at time.Time, aircraftIDs ...int) error {
	if len(aircraftIDs) == 0 {
		return nil
	}
	clause, args := inClause("aircraft_id", aircraftIDs)
	query := `UPDATE portfolios SET last_modified = ? WHERE id IN (
		SELECT portfolio_id FROM portfolio_aircraft WHERE ` + clause + `)`
	if _, err := ex.ExecContext(ctx, query, append([]any{at.UTC()}, args...)...); err != nil {
		return fmt.Errorf("failed to touch portfolios: %w", err)
	}
	return nil
}

// touchAllPortfolios moves every portfolio watermark after a reference data change
func touchAllPortfolios(ctx context.Context, ex execer, at time.Time) error {
	if _, err := ex.ExecContext(ctx, `UPDATE portfolios SET last_modified = ?`, at.UTC()); err != nil {
		return fmt.Errorf("failed to touch portfolios: %w", err)
	}
	return nil
}

func (r *portfolioRepository) Create(ctx context.Context, p models.Portfolio) error {
	modified := p.LastModified
	if modified.IsZero() {
		modified = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, name, owner_id, archived, last_modified) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.OwnerID, p.Archived, modified.UTC())
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return r.AddMembers(ctx, p.ID, p.Members...)
}

func (r *portfolioRepository) AddMembers(ctx context.Context, portfolioID int, userIDs ...string) error {
	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO portfolio_members (portfolio_id, user_id) VALUES (?, ?)`,
			portfolioID, userID); err != nil {
			return fmt.Errorf("failed to add portfolio member: %w", err)
		}
	}
	return nil
}

// AddAircraft adds aircraft to a portfolio and moves its watermark
func (r *portfolioRepository) AddAircraft(ctx context.Context, portfolioID int, aircraftIDs ...int) error {
	if len(aircraftIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range aircraftIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO portfolio_aircraft (portfolio_id, aircraft_id) VALUES (?, ?)`,
			portfolioID, id); err != nil {
			return fmt.Errorf("failed to add aircraft to portfolio: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE portfolios SET last_modified = ? WHERE id = ?`, time.Now().UTC(), portfolioID); err != nil {
		return fmt.Errorf("failed to touch portfolio: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPortfolio loads a portfolio and its members. Archived portfolios are
// reported as not found unless the caller is a service.
func (r *portfolioRepository) GetPortfolio(ctx context.Context, portfolioID int, isServiceCaller bool) (models.Portfolio, error) {
	p := models.Portfolio{ID: portfolioID}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, owner_id, archived, last_modified FROM portfolios WHERE id = ?`, portfolioID).
		Scan(&p.Name, &p.OwnerID, &p.Archived, &p.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Portfolio{}, fmt.Errorf("%w: %d", ErrPortfolioNotFound, portfolioID)
	}
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("failed to load portfolio: %w", err)
	}
	if p.Archived && !isServiceCaller {
		return models.Portfolio{}, fmt.Errorf("%w: %d", ErrPortfolioNotFound, portfolioID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM portfolio_members WHERE portfolio_id = ? ORDER BY user_id`, portfolioID)
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("failed to load portfolio members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return models.Portfolio{}, fmt.Errorf("failed to scan portfolio member: %w", err)
		}
		p.Members = append(p.Members, userID)
	}
	return p, rows.Err()
}

// LastModified returns the portfolio's data watermark
func (r *portfolioRepository) LastModified(ctx context.Context, portfolioID int) (time.Time, error) {
	var modified time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_modified FROM portfolios WHERE id = ?`, portfolioID).Scan(&modified)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrPortfolioNotFound, portfolioID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read last modified: %w", err)
	}
	return modified, nil
}
