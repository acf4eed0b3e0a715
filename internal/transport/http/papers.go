package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"exam-grading-service/internal/domain"
	"go.uber.org/zap"
)

func (h *Handler) listPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.papers.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

func (h *Handler) getPaper(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.papers.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createPaper(w http.ResponseWriter, r *http.Request) {
	var in domain.PaperInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.papers.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePaper(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var in domain.PaperInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	p, err := h.papers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deletePaper(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.papers.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.log, formFileError(err))
		return
	}
	defer file.Close()

	p, err := h.papers.UploadPDF(r.Context(), id, file, header.Size)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	rc, err := h.papers.OpenPDF(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="paper-`+strconv.FormatInt(id, 10)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn("stream pdf failed", zap.Int64("paper_id", id), zap.Error(err))
	}
}

func formFileError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Invalid("file", "larger than %d bytes", tooLarge.Limit)
	}
	if errors.Is(err, http.ErrMissingFile) {
		return domain.Invalid("file", "is required")
	}
	return domain.Invalid("file", "unreadable multipart upload: %v", err)
}
