package sqlite

import (
	"context"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
)

type twoFactorChallengesRepo struct {
	db dbtx
}

func (r *twoFactorChallengesRepo) CreateTwoFactorChallenge(
	ctx context.Context,
	c domain.TwoFactorChallenge,
) error {
	// A fresh login supersedes any previous pending challenge.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM two_factor_challenges WHERE user_id = ?`, c.UserID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO two_factor_challenges (id, user_id, expires_at)
		VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.ExpiresAt.UTC(),
	)
	return err
}

func (r *twoFactorChallengesRepo) ConsumeTwoFactorChallenge(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM two_factor_challenges
		WHERE user_id = ? AND expires_at > ?`, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *twoFactorChallengesRepo) DeleteExpiredTwoFactorChallenges(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM two_factor_challenges WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
