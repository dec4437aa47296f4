package survey

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// insertResponseTx records a response inside the submission transaction.
func insertResponseTx(ctx context.Context, tx pgx.Tx, now time.Time, surveyID, tokenID string, answers [QuestionCount]int16) (string, error) {
	id := ulid.Make().String()
	_, err := tx.Exec(ctx, `
		INSERT INTO survey_responses (id, survey_id, token_id, q1, q2, q3, q4, q5, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, surveyID, tokenID, answers[0], answers[1], answers[2], answers[3], answers[4], now)
	if err != nil {
		return "", err
	}
	return id, nil
}
