package app

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/domain"
	"go.uber.org/zap"
)

// SubmissionService records and grades student submissions.
type SubmissionService struct {
	submissions SubmissionRepository
	results     ResultsRepository
	feeds       FeedRepository
	events      EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

func NewSubmissionService(submissions SubmissionRepository, results ResultsRepository, feeds FeedRepository, events EventPublisher, log *zap.Logger) *SubmissionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &SubmissionService{
		submissions: submissions,
		results:     results,
		feeds:       feeds,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// Record validates a student's answers, grades them against the paper's current
// answer key and persists the frozen result. A student may submit a paper once;
// a second attempt fails with domain.ErrConflict.
func (s *SubmissionService) Record(ctx context.Context, paperID, studentID int64, answers []domain.Answer, timeSpent int) (domain.Submission, error) {
	if err := validateAnswers(answers, timeSpent); err != nil {
		return domain.Submission{}, err
	}
	if answers == nil {
		answers = []domain.Answer{}
	}

	draft := domain.SubmissionDraft{
		PaperID:     paperID,
		StudentID:   studentID,
		Answers:     answers,
		TimeSpent:   timeSpent,
		SubmittedAt: s.now().UTC(),
	}
	sub, err := s.submissions.CreateSubmission(ctx, draft, func(key domain.AnswerKey) domain.ScoreResult {
		return Score(key, answers)
	})
	if err != nil {
		return domain.Submission{}, fmt.Errorf("record submission for paper %d: %w", paperID, err)
	}

	s.log.Info("submission recorded",
		zap.Int64("submission_id", sub.ID),
		zap.Int64("paper_id", paperID),
		zap.Int64("student_id", studentID),
		zap.Int("score", sub.Score),
		zap.Int("total_questions", sub.TotalQuestions),
	)
	s.announce(ctx, sub)
	return sub, nil
}

// announce runs after commit; failures here never undo the submission.
func (s *SubmissionService) announce(ctx context.Context, sub domain.Submission) {
	result, err := s.results.ResultForSubmission(ctx, sub.ID)
	if err != nil {
		s.log.Warn("load result for announcement failed", zap.Int64("submission_id", sub.ID), zap.Error(err))
		return
	}
	if feed, ok := s.feeds.Get(sub.PaperID); ok {
		feed.publish(result)
	}
	if err := s.events.Publish(ctx, EventSubmissionRecorded, fmt.Sprint(sub.PaperID), result); err != nil {
		s.log.Warn("publish submission event failed", zap.Int64("submission_id", sub.ID), zap.Error(err))
	}
}
