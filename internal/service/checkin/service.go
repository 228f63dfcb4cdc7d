package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/crisis"
	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
	"github.com/zhouzirui/neuroguard/backend/internal/analysis/wellness"
	"github.com/zhouzirui/neuroguard/backend/internal/metrics"
	"github.com/zhouzirui/neuroguard/backend/internal/model/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
	"github.com/zhouzirui/neuroguard/backend/internal/service/classifier"
	"github.com/zhouzirui/neuroguard/backend/internal/service/session"
	"github.com/zhouzirui/neuroguard/backend/internal/service/support"
)

var ErrEmptyText = errors.New("text is required")

// ClassificationError is returned when the classifier produced no label. The
// risk aggregator and crisis detector are not consulted in that case.
type ClassificationError struct {
	Reason classification.Reason
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("classification %s", e.Reason)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Report is everything a check-in produces.
type Report struct {
	Entry         checkin.Entry   `json:"entry"`
	Risk          risk.Level      `json:"risk"`
	Score         float64         `json:"score"`
	Crisis        bool            `json:"crisis"`
	CrisisMatches []string        `json:"crisisMatches,omitempty"`
	Scores        wellness.Scores `json:"scores"`
	Message       string          `json:"message"`
	CrisisMessage string          `json:"crisisMessage,omitempty"`
	Disclaimer    string          `json:"disclaimer"`
}

// Assessment is the stateless answer for a classification supplied by the
// caller.
type Assessment struct {
	Risk  risk.Level `json:"risk"`
	Score float64    `json:"score"`
}

// Service runs a check-in end to end: classify, assess against the history
// recorded before this message, detect crisis language, then append.
type Service struct {
	sessions   *session.Service
	classifier classifier.Classifier
	aggregator *risk.Aggregator
	detector   *crisis.Detector
	logger     *slog.Logger
}

// NewService wires the check-in pipeline.
func NewService(sessions *session.Service, c classifier.Classifier, aggregator *risk.Aggregator, detector *crisis.Detector) *Service {
	if aggregator == nil {
		aggregator = risk.New()
	}
	if detector == nil {
		detector = crisis.New()
	}
	return &Service{
		sessions:   sessions,
		classifier: c,
		aggregator: aggregator,
		detector:   detector,
		logger:     slog.Default().With("component", "checkin"),
	}
}

// Analyze classifies text for the session and records the result.
func (s *Service) Analyze(ctx context.Context, sessionID, text string) (Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Report{}, ErrEmptyText
	}

	// Fail fast on unknown sessions before paying for classification.
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return Report{}, err
	}

	outcome := s.classifier.Classify(ctx, text)
	result, ok := outcome.Result()
	if !ok {
		return Report{}, &ClassificationError{Reason: outcome.Reason(), Err: outcome.Err()}
	}

	confidence := risk.ClampConfidence(result.Confidence)
	matches := s.detector.Matches(text)
	flagged := len(matches) > 0

	// Scoring reads the history as it stands when the entry is appended, so a
	// Reset during classification is honoured.
	var (
		history []string
		score   float64
		level   risk.Level
	)
	entry, err := s.sessions.Record(ctx, sessionID, func(current []string) checkin.Entry {
		history = current
		score = s.aggregator.Score(result.Label, confidence, history)
		level = risk.LevelFor(score)
		return checkin.Entry{
			Text:       text,
			Label:      result.Label,
			Confidence: confidence,
			Risk:       string(level),
			Crisis:     flagged,
		}
	})
	if err != nil {
		return Report{}, err
	}

	labels := append(history, result.Label)
	report := Report{
		Entry:         entry,
		Risk:          level,
		Score:         score,
		Crisis:        flagged,
		CrisisMatches: matches,
		Scores:        wellness.Compute(labels, confidence, s.aggregator.IsNegative),
		Message:       support.Message(result.Label, level),
		Disclaimer:    support.Disclaimer,
	}
	if flagged {
		report.CrisisMessage = support.CrisisMessage
		s.logger.Warn("crisis language detected", "session", sessionID, "matches", len(matches), "risk", level)
	}

	metrics.ObserveCheckin(string(level), flagged)
	s.logger.Info("check-in analysed",
		"session", sessionID,
		"label", result.Label,
		"confidence", confidence,
		"risk", level,
		"history", len(history))

	return report, nil
}

// Assess scores a caller-supplied classification without touching any
// session. Out-of-range confidence is rejected rather than clamped.
func (s *Service) Assess(label string, confidence float64, history []string) (Assessment, error) {
	if err := risk.ValidateConfidence(confidence); err != nil {
		return Assessment{}, err
	}
	score := s.aggregator.Score(label, confidence, history)
	return Assessment{Risk: risk.LevelFor(score), Score: score}, nil
}

// DetectCrisis runs only the phrase detector.
func (s *Service) DetectCrisis(text string) []string {
	return s.detector.Matches(text)
}

// History returns the recorded entries for a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]checkin.Entry, error) {
	return s.sessions.Entries(ctx, sessionID)
}

// Reset clears a session's history.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessions.Reset(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session history reset", "session", sessionID)
	return nil
}
