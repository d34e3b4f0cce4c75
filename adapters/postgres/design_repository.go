package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"glmdesign/domain/core"
	"glmdesign/domain/design"
	"glmdesign/domain/run"
	"glmdesign/ports"

	"github.com/jmoiron/sqlx"
)

const defaultListLimit = 50

// DesignRunRepositoryImpl implements DesignRunRepository on any sqlx database.
// Queries are written with ? placeholders and rebound for the driver, so the
// same code serves PostgreSQL and SQLite.
type DesignRunRepositoryImpl struct {
	db *sqlx.DB
}

// NewDesignRunRepository creates a new SQL design run repository
func NewDesignRunRepository(db *sqlx.DB) ports.DesignRunRepository {
	return &DesignRunRepositoryImpl{db: db}
}

// designRunRow is the stored shape of a run: nested values are JSON text
type designRunRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Fingerprint string    `db:"fingerprint"`
	InputHash   string    `db:"input_hash"`
	OptionsHash string    `db:"options_hash"`
	Options     string    `db:"options"`
	Result      string    `db:"result"`
	Diagnostics string    `db:"diagnostics"`
	CreatedAt   time.Time `db:"created_at"`
}

const selectColumns = `id, name, fingerprint, input_hash, options_hash, options, result, diagnostics, created_at`

// Save inserts a run
func (r *DesignRunRepositoryImpl) Save(ctx context.Context, dr *run.DesignRun) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	row, err := toRow(dr)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO design_runs (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), row.ID, row.Name, row.Fingerprint, row.InputHash, row.OptionsHash,
		row.Options, row.Result, row.Diagnostics, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save design run %s: %w", dr.ID, err)
	}
	return nil
}

// GetByID retrieves a run by ID
func (r *DesignRunRepositoryImpl) GetByID(ctx context.Context, id core.RunID) (*run.DesignRun, error) {
	var row designRunRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+selectColumns+`
		FROM design_runs
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design run %s: %w", id, err)
	}
	return fromRow(row)
}

// List returns runs newest first
func (r *DesignRunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*run.DesignRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var rows []designRunRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+selectColumns+`
		FROM design_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list design runs: %w", err)
	}

	runs := make([]*run.DesignRun, 0, len(rows))
	for _, row := range rows {
		dr, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, dr)
	}
	return runs, nil
}

// Delete removes a run
func (r *DesignRunRepositoryImpl) Delete(ctx context.Context, id core.RunID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM design_runs WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete design run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return nil
}

func toRow(dr *run.DesignRun) (designRunRow, error) {
	options, err := json.Marshal(dr.Options)
	if err != nil {
		return designRunRow{}, fmt.Errorf("failed to encode options: %w", err)
	}
	result, err := json.Marshal(dr.Result)
	if err != nil {
		return designRunRow{}, fmt.Errorf("failed to encode result: %w", err)
	}
	diagnostics, err := json.Marshal(dr.Diagnostics)
	if err != nil {
		return designRunRow{}, fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	return designRunRow{
		ID:          dr.ID.String(),
		Name:        dr.Name,
		Fingerprint: dr.Fingerprint.String(),
		InputHash:   dr.InputHash.String(),
		OptionsHash: dr.OptionsHash.String(),
		Options:     string(options),
		Result:      string(result),
		Diagnostics: string(diagnostics),
		CreatedAt:   dr.CreatedAt.Time(),
	}, nil
}

func fromRow(row designRunRow) (*run.DesignRun, error) {
	dr := &run.DesignRun{
		ID:          core.RunID(row.ID),
		Name:        row.Name,
		Fingerprint: core.Hash(row.Fingerprint),
		InputHash:   core.Hash(row.InputHash),
		OptionsHash: core.Hash(row.OptionsHash),
		CreatedAt:   core.NewTimestamp(row.CreatedAt),
	}
	if err := json.Unmarshal([]byte(row.Options), &dr.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options of run %s: %w", row.ID, err)
	}
	var result design.Result
	if err := json.Unmarshal([]byte(row.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to decode result of run %s: %w", row.ID, err)
	}
	dr.Result = result
	if err := json.Unmarshal([]byte(row.Diagnostics), &dr.Diagnostics); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics of run %s: %w", row.ID, err)
	}
	if err := dr.Result.Model.CheckAlignment(design.StageContrast); err != nil {
		return nil, fmt.Errorf("stored run %s is inconsistent: %w", row.ID, err)
	}
	return dr, nil
}
