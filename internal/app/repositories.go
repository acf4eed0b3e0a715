package app

import (
	"context"
	"io"
	"time"

	"exam-grading-service/internal/domain"
)

// PaperRepository persists papers.
type PaperRepository interface {
	CreatePaper(ctx context.Context, in domain.PaperInput, createdAt time.Time) (domain.Paper, error)
	GetPaper(ctx context.Context, id int64) (domain.Paper, error)
	ListPapers(ctx context.Context) ([]domain.Paper, error)
	UpdatePaper(ctx context.Context, id int64, in domain.PaperInput) (domain.Paper, error)
	// SetPaperPDF stores the blob key and returns the key it replaced ("" if none).
	SetPaperPDF(ctx context.Context, id int64, key string) (string, error)
	// DeletePaper removes the paper together with its answer key and submissions.
	DeletePaper(ctx context.Context, id int64) (domain.Paper, error)
}

// UserRepository is the identity directory.
type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

// AnswerKeyLoader reads the current answer key of a paper. It returns an empty
// key when none was uploaded and domain.ErrNotFound when the paper is missing.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error)
}

// AnswerKeyRepository owns the answer key rows.
type AnswerKeyRepository interface {
	AnswerKeyLoader
	// ReplaceAnswerKey swaps the whole key in one transaction.
	ReplaceAnswerKey(ctx context.Context, paperID int64, entries []domain.AnswerKeyEntry, at time.Time) error
}

// GradeFunc scores a submission against the key snapshot read inside the
// recording transaction.
type GradeFunc func(key domain.AnswerKey) domain.ScoreResult

// SubmissionRepository writes submissions once and reads them back.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, draft domain.SubmissionDraft, grade GradeFunc) (domain.Submission, error)
	GetSubmission(ctx context.Context, id int64) (domain.Submission, error)
}

// ResultsRepository serves read projections over frozen submissions.
type ResultsRepository interface {
	ResultsForPaper(ctx context.Context, paperID int64) ([]domain.StudentResult, error)
	ResultsForStudent(ctx context.Context, studentID int64) ([]domain.StudentResult, error)
	ResultForSubmission(ctx context.Context, submissionID int64) (domain.StudentResult, error)
}

// AnswerKeyCache fronts an AnswerKeyLoader for read-mostly lookups.
type AnswerKeyCache interface {
	GetAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, paperID int64) error
}

// BlobStore keeps paper PDFs by opaque key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher announces committed state changes.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// FeedRepository abstracts where live result feeds are kept.
type FeedRepository interface {
	GetOrCreate(paperID int64) *Feed
	Get(paperID int64) (*Feed, bool)
	DeleteIfEmpty(paperID int64)
}

const (
	EventSubmissionRecorded = "submission.recorded"
	EventAnswerKeyReplaced  = "answer_key.replaced"
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
