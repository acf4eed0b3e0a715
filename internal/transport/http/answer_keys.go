package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"exam-grading-service/internal/domain"
	"exam-grading-service/internal/ingest"
)

type answerKeyEntryRequest struct {
	QuestionNumber int             `json:"question_number"`
	CorrectOption  json.RawMessage `json:"correct_option"`
}

type answerKeyRequest struct {
	Entries []answerKeyEntryRequest `json:"entries"`
}

type answerKeyResponse struct {
	PaperID  int64                   `json:"paper_id"`
	Gradable bool                    `json:"gradable"`
	Entries  []domain.AnswerKeyEntry `json:"entries"`
}

// replaceAnswerKey accepts JSON entries or a multipart .csv/.xlsx upload in field "file".
func (h *Handler) replaceAnswerKey(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var entries []domain.AnswerKeyEntry
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		entries, err = h.answerKeyFromUpload(r)
	} else {
		entries, err = answerKeyFromJSON(r)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if err := h.answerKeys.Replace(r.Context(), id, entries); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.writeAnswerKey(w, r, id)
}

func (h *Handler) getAnswerKey(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paperID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.writeAnswerKey(w, r, id)
}

func (h *Handler) writeAnswerKey(w http.ResponseWriter, r *http.Request, id int64) {
	key, err := h.answerKeys.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answerKeyResponse{PaperID: id, Gradable: len(key) > 0, Entries: key.Entries()})
}

func answerKeyFromJSON(r *http.Request) ([]domain.AnswerKeyEntry, error) {
	var req answerKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	entries := make([]domain.AnswerKeyEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		opt, err := parseOption(e.CorrectOption, indexed("entries", i, "correct_option"))
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.AnswerKeyEntry{QuestionNumber: e.QuestionNumber, CorrectOption: opt})
	}
	return entries, nil
}

func (h *Handler) answerKeyFromUpload(r *http.Request) ([]domain.AnswerKeyEntry, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, formFileError(err)
	}
	defer file.Close()
	return ingest.ParseFile(header.Filename, file)
}
