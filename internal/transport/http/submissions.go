package http

import (
	"encoding/json"
	"net/http"

	"exam-grading-service/internal/domain"
)

type answerRequest struct {
	QuestionNumber int             `json:"question_number"`
	SelectedOption json.RawMessage `json:"selected_option"`
}

type submissionRequest struct {
	Answers   []answerRequest `json:"answers"`
	TimeSpent int             `json:"time_spent"`
}

// recordSubmission grades the caller's answers for a paper.
func (h *Handler) recordSubmission(w http.ResponseWriter, r *http.Request) {
	paperID, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	caller, err := identity(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	answers := make([]domain.Answer, 0, len(req.Answers))
	for i, a := range req.Answers {
		opt, err := parseOption(a.SelectedOption, indexed("answers", i, "selected_option"))
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		answers = append(answers, domain.Answer{QuestionNumber: a.QuestionNumber, SelectedOption: opt})
	}

	sub, err := h.submissions.Record(r.Context(), paperID, caller.UserID, answers, req.TimeSpent)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "submissionID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	caller, err := identity(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	sub, err := h.results.Submission(r.Context(), id, caller)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
