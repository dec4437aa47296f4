package surveytoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// AcquireForSubmissionTx locks the token row matching (surveyID, tokenHash)
// inside the caller's transaction. The row lock is held until the transaction
// ends, which serializes concurrent submissions of the same token.
//
// ErrNotFound means no such token exists for the survey; ErrGone means it
// exists but is already redeemed or revoked.
func AcquireForSubmissionTx(ctx context.Context, tx pgx.Tx, surveyID, tokenHash string) (Token, error) {
	t, err := scanToken(tx.QueryRow(ctx, `
		SELECT `+tokenColumns+`
		FROM survey_tokens
		WHERE survey_id = $1 AND token_hash = $2
		FOR UPDATE
	`, surveyID, tokenHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, ErrNotFound
	}
	if err != nil {
		return Token{}, err
	}
	if t.Redeemed || t.Revoked {
		return Token{}, ErrGone
	}
	return t, nil
}

// ConsumeTx marks a previously acquired token as redeemed. It must run in the
// same transaction that acquired the row lock. The conditional WHERE guards
// against consuming a token that left the active state in the meantime.
func ConsumeTx(ctx context.Context, tx pgx.Tx, now time.Time, tok Token) error {
	tag, err := tx.Exec(ctx, `
		UPDATE survey_tokens
		SET redeemed = TRUE, redeemed_at = $2
		WHERE id = $1 AND redeemed = FALSE AND revoked = FALSE
	`, tok.ID, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("survey token %s: not consumable", tok.ID)
	}
	return nil
}
