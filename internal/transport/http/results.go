package http

import (
	"net/http"

	"exam-grading-service/internal/domain"
)

type resultsResponse struct {
	Results []domain.StudentResult `json:"results"`
}

func (h *Handler) paperResults(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	results, err := h.results.ForPaper(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (h *Handler) studentResults(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "studentID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.writeStudentResults(w, r, id)
}

func (h *Handler) myResults(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.writeStudentResults(w, r, caller.UserID)
}

func (h *Handler) writeStudentResults(w http.ResponseWriter, r *http.Request, studentID int64) {
	results, err := h.results.ForStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}
