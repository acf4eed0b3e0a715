package app

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/domain"
	"go.uber.org/zap"
)

// AnswerKeyService is the administrator-facing side of the answer key store.
type AnswerKeyService struct {
	keys   AnswerKeyRepository
	cache  AnswerKeyCache
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

func NewAnswerKeyService(keys AnswerKeyRepository, cache AnswerKeyCache, events EventPublisher, log *zap.Logger) *AnswerKeyService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AnswerKeyService{keys: keys, cache: cache, events: events, log: log, now: time.Now}
}

type answerKeyReplaced struct {
	PaperID    int64     `json:"paper_id"`
	Questions  int       `json:"questions"`
	ReplacedAt time.Time `json:"replaced_at"`
}

// Replace validates entries and swaps the paper's whole answer key atomically.
// On any error the previous key is left untouched.
func (s *AnswerKeyService) Replace(ctx context.Context, paperID int64, entries []domain.AnswerKeyEntry) error {
	if err := validateAnswerKey(entries); err != nil {
		return err
	}
	at := s.now().UTC()
	if err := s.keys.ReplaceAnswerKey(ctx, paperID, entries, at); err != nil {
		return fmt.Errorf("replace answer key of paper %d: %w", paperID, err)
	}

	if err := s.cache.Invalidate(ctx, paperID); err != nil {
		s.log.Warn("answer key cache invalidation failed", zap.Int64("paper_id", paperID), zap.Error(err))
	}
	event := answerKeyReplaced{PaperID: paperID, Questions: len(entries), ReplacedAt: at}
	if err := s.events.Publish(ctx, EventAnswerKeyReplaced, fmt.Sprint(paperID), event); err != nil {
		s.log.Warn("publish answer key event failed", zap.Int64("paper_id", paperID), zap.Error(err))
	}
	s.log.Info("answer key replaced", zap.Int64("paper_id", paperID), zap.Int("questions", len(entries)))
	return nil
}

// Get returns the current key; an empty key means the paper is not gradable yet.
func (s *AnswerKeyService) Get(ctx context.Context, paperID int64) (domain.AnswerKey, error) {
	key, err := s.cache.GetAnswerKey(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get answer key of paper %d: %w", paperID, err)
	}
	return key, nil
}
