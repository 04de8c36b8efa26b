package repository

import (
	"context"
	"fmt"
	"time"

	"memories-backend/internal/models"
	"memories-backend/internal/oauth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindOrCreate returns the local user for a GitHub profile, creating it
// on first sight. Existing records are returned as-is; login, name and
// avatar are not refreshed on repeat logins. The unique constraint on
// github_id resolves concurrent first logins: the insert is
// ON CONFLICT DO NOTHING and the winner's row is re-read.
func (r *UserRepository) FindOrCreate(ctx context.Context, profile *oauth.Profile) (*models.User, error) {
	user, err := r.getByGitHubID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	query := `
		INSERT INTO users (id, github_id, login, name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (github_id) DO NOTHING
	`
	_, err = r.db.Exec(ctx, query,
		uuid.New().String(), profile.ID, profile.Login, profile.Name, profile.AvatarURL, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err = r.getByGitHubID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read user after insert: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getByGitHubID(ctx context.Context, githubID int64) (*models.User, error) {
	query := `
		SELECT id, github_id, login, name, avatar_url, created_at
		FROM users
		WHERE github_id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, githubID).Scan(
		&user.ID, &user.GitHubID, &user.Login, &user.Name, &user.AvatarURL, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
