package survey

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabsGitHub/team-analyzer/internal/surveytoken"
)

// PostgresStore persists surveys in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateSurvey(ctx context.Context, sv Survey, questions []Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO surveys (id, team_id, created_by, title, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sv.ID, sv.TeamID, sv.CreatedBy, sv.Title, sv.CreatedAt)
	if err != nil {
		return err
	}
	for _, q := range questions {
		_, err = tx.Exec(ctx, `
			INSERT INTO survey_questions (survey_id, idx, text)
			VALUES ($1, $2, $3)
		`, q.SurveyID, q.Idx, q.Text)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetSurvey(ctx context.Context, id string) (Survey, error) {
	var sv Survey
	err := s.pool.QueryRow(ctx, `
		SELECT id, team_id, created_by, title, created_at
		FROM surveys WHERE id = $1
	`, id).Scan(&sv.ID, &sv.TeamID, &sv.CreatedBy, &sv.Title, &sv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Survey{}, ErrNotFound
	}
	return sv, err
}

func (s *PostgresStore) ListQuestions(ctx context.Context, surveyID string) ([]Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT survey_id, idx, text
		FROM survey_questions
		WHERE survey_id = $1
		ORDER BY idx
	`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.SurveyID, &q.Idx, &q.Text); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) IsTeamLeader(ctx context.Context, teamID, userID string) (bool, error) {
	var leader bool
	err := s.pool.QueryRow(ctx, `
		SELECT leader FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&leader)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return leader, err
}

func (s *PostgresStore) ListMembers(ctx context.Context, teamID string) ([]surveytoken.Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tm.user_id, u.email
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY u.email
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []surveytoken.Member
	for rows.Next() {
		var m surveytoken.Member
		if err := rows.Scan(&m.UserID, &m.Email); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListResponses(ctx context.Context, surveyID string) ([]Response, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, survey_id, token_id, q1, q2, q3, q4, q5, created_at
		FROM survey_responses
		WHERE survey_id = $1
		ORDER BY created_at
	`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var r Response
		err := rows.Scan(&r.ID, &r.SurveyID, &r.TokenID,
			&r.Answers[0], &r.Answers[1], &r.Answers[2], &r.Answers[3], &r.Answers[4],
			&r.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
