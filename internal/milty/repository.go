package milty

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"milty-server/internal/shared/database"
)

type Repository struct {
	db database.Executor
}

func NewRepository(db database.Executor) *Repository {
	logger := slog.With("component", "milty_repository", "operation", "init")
	logger.Debug("Initializing milty repository")
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, draft *Draft) error {
	logger := slog.With(
		"component", "milty_repository",
		"operation", "create_draft",
		"draft_id", draft.ID,
		"slice_count", len(draft.Slices),
	)
	logger.Debug("Creating draft")

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	query := `
		INSERT INTO drafts (id, preset, slice_count, seed, ratio, balanced, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		draft.ID,
		draft.Preset,
		len(draft.Slices),
		draft.Seed,
		draft.Ratio(),
		draft.Balanced(),
		string(payload),
		draft.CreatedAt.UTC(),
	)
	if err != nil {
		logger.Error("Failed to create draft", "error", err)
		return fmt.Errorf("failed to create draft: %w", err)
	}

	logger.Info("Draft created successfully")
	return nil
}

// GetByID returns nil, nil when no draft has the id
func (r *Repository) GetByID(ctx context.Context, id string) (*Draft, error) {
	logger := slog.With("component", "milty_repository", "operation", "get_draft", "draft_id", id)
	logger.Debug("Getting draft by ID")

	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM drafts WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Draft not found")
			return nil, nil
		}
		logger.Error("Database error getting draft", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		logger.Error("Failed to decode draft payload", "error", err)
		return nil, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}

	return &draft, nil
}

// ListRecent returns up to limit drafts, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]DraftSummary, error) {
	logger := slog.With("component", "milty_repository", "operation", "list_recent", "limit", limit)
	logger.Debug("Listing recent drafts")

	query := `
		SELECT id, preset, slice_count, seed, ratio, balanced, created_at
		FROM drafts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.Error("Failed to query drafts", "error", err)
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	drafts := []DraftSummary{}
	for rows.Next() {
		var d DraftSummary
		if err := rows.Scan(&d.ID, &d.Preset, &d.SliceCount, &d.Seed, &d.Ratio, &d.Balanced, &d.CreatedAt); err != nil {
			logger.Error("Failed to scan draft row", "error", err)
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Error iterating draft rows", "error", err)
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	logger.Debug("Drafts listed", "count", len(drafts))
	return drafts, nil
}

// Delete reports whether a draft was removed
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	logger := slog.With("component", "milty_repository", "operation", "delete_draft", "draft_id", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete draft", "error", err)
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	logger.Info("Draft delete executed", "deleted", affected > 0)
	return affected > 0, nil
}
