package survey

import (
	"context"
	"time"

	"github.com/fabsGitHub/team-analyzer/internal/surveytoken"
)

// QuestionCount is fixed: every survey asks exactly five questions.
const QuestionCount = 5

// Survey mirrors a surveys row.
type Survey struct {
	ID        string
	TeamID    string
	CreatedBy string
	Title     string
	CreatedAt time.Time
}

// Question is one of a survey's five ordered questions. Idx runs 1..5.
type Question struct {
	SurveyID string
	Idx      int16
	Text     string
}

// Response mirrors a survey_responses row. TokenID links the response to
// the consumed token for auditing; it carries no holder identity.
type Response struct {
	ID        string
	SurveyID  string
	TokenID   string
	Answers   [QuestionCount]int16
	CreatedAt time.Time
}

// Results aggregates all responses of a survey: the per-question mean and
// how many responses went into it. Averages are zero when Count is zero.
type Results struct {
	Averages [QuestionCount]float64
	Count    int
}

// Store is the survey persistence boundary. Response insertion is not here:
// it is a tx-scoped function because it must share the transaction that
// consumes the token.
type Store interface {
	// CreateSurvey inserts a survey together with its questions.
	CreateSurvey(ctx context.Context, s Survey, questions []Question) error

	// GetSurvey returns a survey by id, or ErrNotFound.
	GetSurvey(ctx context.Context, id string) (Survey, error)

	// ListQuestions returns the survey's questions ordered by Idx.
	ListQuestions(ctx context.Context, surveyID string) ([]Question, error)

	// IsTeamLeader reports whether the user is flagged leader in the
	// team's membership.
	IsTeamLeader(ctx context.Context, teamID, userID string) (bool, error)

	// ListMembers returns the team's members for token issuance.
	ListMembers(ctx context.Context, teamID string) ([]surveytoken.Member, error)

	// ListResponses returns all responses of a survey.
	ListResponses(ctx context.Context, surveyID string) ([]Response, error)
}
