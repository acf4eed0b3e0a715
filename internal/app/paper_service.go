package app

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"exam-grading-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var pdfMagic = []byte("%PDF-")

// PaperService manages paper metadata and the attached PDF.
type PaperService struct {
	papers PaperRepository
	blobs  BlobStore
	cache  AnswerKeyCache
	log    *zap.Logger
	now    func() time.Time
}

func NewPaperService(papers PaperRepository, blobs BlobStore, cache AnswerKeyCache, log *zap.Logger) *PaperService {
	return &PaperService{papers: papers, blobs: blobs, cache: cache, log: log, now: time.Now}
}

func (s *PaperService) Create(ctx context.Context, in domain.PaperInput) (domain.Paper, error) {
	if err := validatePaper(in); err != nil {
		return domain.Paper{}, err
	}
	p, err := s.papers.CreatePaper(ctx, in, s.now().UTC())
	if err != nil {
		return domain.Paper{}, fmt.Errorf("create paper: %w", err)
	}
	s.log.Info("paper created", zap.Int64("paper_id", p.ID), zap.String("title", p.Title))
	return p, nil
}

func (s *PaperService) Get(ctx context.Context, id int64) (domain.Paper, error) {
	p, err := s.papers.GetPaper(ctx, id)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("get paper %d: %w", id, err)
	}
	return p, nil
}

func (s *PaperService) List(ctx context.Context) ([]domain.Paper, error) {
	papers, err := s.papers.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return papers, nil
}

func (s *PaperService) Update(ctx context.Context, id int64, in domain.PaperInput) (domain.Paper, error) {
	if err := validatePaper(in); err != nil {
		return domain.Paper{}, err
	}
	p, err := s.papers.UpdatePaper(ctx, id, in)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("update paper %d: %w", id, err)
	}
	return p, nil
}

// Delete removes a paper with its answer key and submissions, then drops its PDF.
func (s *PaperService) Delete(ctx context.Context, id int64) error {
	p, err := s.papers.DeletePaper(ctx, id)
	if err != nil {
		return fmt.Errorf("delete paper %d: %w", id, err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("answer key cache invalidation failed", zap.Int64("paper_id", id), zap.Error(err))
	}
	if p.PDFPath != "" {
		if err := s.blobs.Delete(ctx, p.PDFPath); err != nil {
			s.log.Warn("delete paper pdf failed", zap.Int64("paper_id", id), zap.String("key", p.PDFPath), zap.Error(err))
		}
	}
	s.log.Info("paper deleted", zap.Int64("paper_id", id))
	return nil
}

// UploadPDF stores r as the paper's PDF, replacing any previous one.
func (s *PaperService) UploadPDF(ctx context.Context, id int64, r io.Reader, size int64) (domain.Paper, error) {
	if _, err := s.papers.GetPaper(ctx, id); err != nil {
		return domain.Paper{}, fmt.Errorf("upload pdf for paper %d: %w", id, err)
	}
	br := bufio.NewReader(r)
	head, err := br.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return domain.Paper{}, domain.Invalid("file", "not a PDF document")
	}

	key := fmt.Sprintf("papers/%d/%s.pdf", id, uuid.NewString())
	if err := s.blobs.Put(ctx, key, br, size, "application/pdf"); err != nil {
		return domain.Paper{}, fmt.Errorf("store pdf for paper %d: %w", id, err)
	}
	prev, err := s.papers.SetPaperPDF(ctx, id, key)
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.log.Warn("remove orphaned pdf failed", zap.String("key", key), zap.Error(derr))
		}
		return domain.Paper{}, fmt.Errorf("attach pdf to paper %d: %w", id, err)
	}
	if prev != "" && prev != key {
		if err := s.blobs.Delete(ctx, prev); err != nil {
			s.log.Warn("delete replaced pdf failed", zap.String("key", prev), zap.Error(err))
		}
	}
	s.log.Info("paper pdf uploaded", zap.Int64("paper_id", id), zap.String("key", key))
	return s.Get(ctx, id)
}

// OpenPDF streams the paper's PDF. The caller closes the reader.
func (s *PaperService) OpenPDF(ctx context.Context, id int64) (io.ReadCloser, error) {
	p, err := s.papers.GetPaper(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open pdf of paper %d: %w", id, err)
	}
	if p.PDFPath == "" {
		return nil, fmt.Errorf("paper %d has no pdf: %w", id, domain.ErrNotFound)
	}
	rc, err := s.blobs.Open(ctx, p.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf of paper %d: %w", id, err)
	}
	return rc, nil
}
