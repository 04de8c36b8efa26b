package repository

import (
	"context"
	"fmt"

	"memories-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemoryRepository handles database operations for memories
type MemoryRepository struct {
	db *pgxpool.Pool
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *pgxpool.Pool) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Create creates a new memory
func (r *MemoryRepository) Create(ctx context.Context, memory *models.Memory) error {
	query := `
		INSERT INTO memories (id, user_id, text, media_url, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		memory.ID, memory.UserID, memory.Text, memory.MediaURL, memory.IsPublic, memory.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}
	return nil
}

// GetByID retrieves a memory by id
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	query := `
		SELECT id, user_id, text, media_url, is_public, created_at
		FROM memories
		WHERE id = $1
	`
	var memory models.Memory
	err := r.db.QueryRow(ctx, query, id).Scan(
		&memory.ID, &memory.UserID, &memory.Text, &memory.MediaURL,
		&memory.IsPublic, &memory.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("memory %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return &memory, nil
}

// ListByUser retrieves a user's memories in ascending creation order
func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Memory, error) {
	query := `
		SELECT id, user_id, text, media_url, is_public, created_at
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, userID)
}

// ListPublic retrieves all public memories in ascending creation order
func (r *MemoryRepository) ListPublic(ctx context.Context) ([]*models.Memory, error) {
	query := `
		SELECT id, user_id, text, media_url, is_public, created_at
		FROM memories
		WHERE is_public
		ORDER BY created_at ASC
	`
	return r.list(ctx, query)
}

// Update replaces the mutable fields of a memory
func (r *MemoryRepository) Update(ctx context.Context, memory *models.Memory) error {
	query := `
		UPDATE memories
		SET text = $1, media_url = $2, is_public = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, memory.Text, memory.MediaURL, memory.IsPublic, memory.ID)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("memory %s: %w", memory.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a memory by id
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("memory %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MemoryRepository) list(ctx context.Context, query string, args ...any) ([]*models.Memory, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	var memories []*models.Memory
	for rows.Next() {
		var memory models.Memory
		err := rows.Scan(
			&memory.ID, &memory.UserID, &memory.Text, &memory.MediaURL,
			&memory.IsPublic, &memory.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		memories = append(memories, &memory)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memories: %w", err)
	}

	return memories, nil
}
