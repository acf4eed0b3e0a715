package app

import (
	"context"
	"fmt"

	"exam-grading-service/internal/domain"
)

// ResultsService aggregates frozen submissions into result views.
type ResultsService struct {
	results     ResultsRepository
	submissions SubmissionRepository
	papers      PaperRepository
	users       UserRepository
	feeds       FeedRepository
}

func NewResultsService(results ResultsRepository, submissions SubmissionRepository, papers PaperRepository, users UserRepository, feeds FeedRepository) *ResultsService {
	return &ResultsService{results: results, submissions: submissions, papers: papers, users: users, feeds: feeds}
}

// ForPaper lists every student's result on a paper.
func (s *ResultsService) ForPaper(ctx context.Context, paperID int64) ([]domain.StudentResult, error) {
	if _, err := s.papers.GetPaper(ctx, paperID); err != nil {
		return nil, fmt.Errorf("results for paper %d: %w", paperID, err)
	}
	results, err := s.results.ResultsForPaper(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("results for paper %d: %w", paperID, err)
	}
	return results, nil
}

// ForStudent lists one student's results across papers.
func (s *ResultsService) ForStudent(ctx context.Context, studentID int64) ([]domain.StudentResult, error) {
	if _, err := s.users.GetUser(ctx, studentID); err != nil {
		return nil, fmt.Errorf("results for student %d: %w", studentID, err)
	}
	results, err := s.results.ResultsForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("results for student %d: %w", studentID, err)
	}
	return results, nil
}

// Submission returns a frozen submission with its breakdown. Students only see their own.
func (s *ResultsService) Submission(ctx context.Context, id int64, viewer domain.Identity) (domain.Submission, error) {
	sub, err := s.submissions.GetSubmission(ctx, id)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("get submission %d: %w", id, err)
	}
	if !viewer.Admin && sub.StudentID != viewer.UserID {
		return domain.Submission{}, fmt.Errorf("get submission %d: %w", id, domain.ErrForbidden)
	}
	return sub, nil
}

// Subscribe streams results recorded on a paper from now on.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ResultsService) Subscribe(ctx context.Context, paperID int64) (<-chan domain.StudentResult, func(), error) {
	if _, err := s.papers.GetPaper(ctx, paperID); err != nil {
		return nil, nil, fmt.Errorf("subscribe to paper %d: %w", paperID, err)
	}
	feed := s.feeds.GetOrCreate(paperID)
	ch, cancelFeed := feed.subscribe()
	cancel := func() {
		cancelFeed()
		s.feeds.DeleteIfEmpty(paperID)
	}
	return ch, cancel, nil
}
