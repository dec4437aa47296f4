package survey

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fabsGitHub/team-analyzer/internal/download"
	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
	"github.com/fabsGitHub/team-analyzer/internal/surveytoken"
)

var responsesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "teamanalyzer_survey_responses_recorded_total",
	Help: "Anonymous survey responses accepted.",
})

// Service implements survey creation, anonymous submission, aggregation and
// result-download links.
type Service struct {
	pool      *pgxpool.Pool
	store     Store
	tokens    *surveytoken.Manager
	downloads *download.Issuer
	log       *slog.Logger
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool, store Store, tokens *surveytoken.Manager, downloads *download.Issuer, log *slog.Logger) *Service {
	return &Service{pool: pool, store: store, tokens: tokens, downloads: downloads, log: log}
}

// Create inserts a survey with its five questions. Only leaders of the team
// may create surveys for it.
func (s *Service) Create(ctx context.Context, now time.Time, leaderID, teamID, title string, questions [QuestionCount]string) (Survey, error) {
	leader, err := s.store.IsTeamLeader(ctx, teamID, leaderID)
	if err != nil {
		return Survey{}, err
	}
	if !leader {
		return Survey{}, ErrNotLeader
	}

	sv := Survey{
		ID:        ulid.Make().String(),
		TeamID:    teamID,
		CreatedBy: leaderID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
	}
	qs := make([]Question, 0, QuestionCount)
	for i, text := range questions {
		qs = append(qs, Question{SurveyID: sv.ID, Idx: int16(i + 1), Text: strings.TrimSpace(text)})
	}
	if err := s.store.CreateSurvey(ctx, sv, qs); err != nil {
		return Survey{}, err
	}
	s.log.Info("survey created", "survey_id", sv.ID, "team_id", teamID)
	return sv, nil
}

// Get returns a survey with its ordered questions.
func (s *Service) Get(ctx context.Context, surveyID string) (Survey, []Question, error) {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return Survey{}, nil, err
	}
	qs, err := s.store.ListQuestions(ctx, surveyID)
	if err != nil {
		return Survey{}, nil, err
	}
	return sv, qs, nil
}

// IssueTokens hands a personal survey token to every member of the survey's
// team that lacks one, returning how many were newly created.
func (s *Service) IssueTokens(ctx context.Context, now time.Time, requesterID, surveyID string) (int, error) {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return 0, err
	}
	leader, err := s.store.IsTeamLeader(ctx, sv.TeamID, requesterID)
	if err != nil {
		return 0, err
	}
	if !leader {
		return 0, ErrNotLeader
	}
	members, err := s.store.ListMembers(ctx, sv.TeamID)
	if err != nil {
		return 0, err
	}
	return s.tokens.EnsureTokensForMembers(ctx, now, surveyID, members)
}

// Submit records an anonymous response, consuming the presented token. The
// token lock, the response insert and the consumption share one transaction:
// either all of it lands or none of it does. A second submission with the
// same token fails with surveytoken.ErrGone; an unknown token with
// surveytoken.ErrNotFound.
func (s *Service) Submit(ctx context.Context, now time.Time, surveyID, plaintext string, answers [QuestionCount]int16) error {
	if _, err := s.store.GetSurvey(ctx, surveyID); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tok, err := surveytoken.AcquireForSubmissionTx(ctx, tx, surveyID, sectoken.HashSHA256Hex(plaintext))
	if err != nil {
		return err
	}
	if _, err := insertResponseTx(ctx, tx, now, surveyID, tok.ID, answers); err != nil {
		return err
	}
	if err := surveytoken.ConsumeTx(ctx, tx, now, tok); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	responsesRecorded.Inc()
	s.log.Info("response recorded", "survey_id", surveyID)
	return nil
}

// Results aggregates a survey's responses for a leader of its team.
func (s *Service) Results(ctx context.Context, requesterID, surveyID string) (Results, error) {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return Results{}, err
	}
	leader, err := s.store.IsTeamLeader(ctx, sv.TeamID, requesterID)
	if err != nil {
		return Results{}, err
	}
	if !leader {
		return Results{}, ErrNotLeader
	}
	responses, err := s.store.ListResponses(ctx, surveyID)
	if err != nil {
		return Results{}, err
	}
	return aggregate(responses), nil
}

// DownloadLink mints a signed, time-boxed download token for the survey's
// results. Leaders only.
func (s *Service) DownloadLink(ctx context.Context, now time.Time, requesterID, surveyID string) (string, error) {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return "", err
	}
	leader, err := s.store.IsTeamLeader(ctx, sv.TeamID, requesterID)
	if err != nil {
		return "", err
	}
	if !leader {
		return "", ErrNotLeader
	}
	return s.downloads.Issue(surveyID, requesterID, now)
}

// FetchResults redeems a download token and returns the aggregate it grants
// access to. Verification failures pass through from the download package.
func (s *Service) FetchResults(ctx context.Context, now time.Time, surveyID, downloadToken string) (Results, error) {
	if _, err := s.downloads.VerifyAndExtractUser(downloadToken, surveyID, now); err != nil {
		return Results{}, err
	}
	responses, err := s.store.ListResponses(ctx, surveyID)
	if err != nil {
		return Results{}, err
	}
	return aggregate(responses), nil
}

func aggregate(responses []Response) Results {
	var res Results
	res.Count = len(responses)
	if res.Count == 0 {
		return res
	}
	for _, r := range responses {
		for i, a := range r.Answers {
			res.Averages[i] += float64(a)
		}
	}
	for i := range res.Averages {
		res.Averages[i] /= float64(res.Count)
	}
	return res
}
