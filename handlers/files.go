package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"regportal-go/ingest"
	"regportal-go/submission"
)

// DownloadFile streams a stored upload back under its original name.
func (h *Handlers) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid file id", err.Error())
		return
	}

	rec, rc, err := h.service.OpenFile(r.Context(), id)
	if err != nil {
		h.sendServiceError(w, r, "Failed to open file", err)
		return
	}
	defer rc.Close()

	sub, err := h.service.Get(r.Context(), rec.SubmissionID)
	if err == nil && !visibleTo(r, sub.BankID) {
		err = submission.ErrFileNotFound
	}
	if err != nil {
		h.sendServiceError(w, r, "Failed to open file", err)
		return
	}

	w.Header().Set("Content-Type", ingest.ContentType(rec.FileName))
	w.Header().Set("Content-Disposition", contentDisposition(rec.FileName))
	if rec.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "file download interrupted", "file_id", id, "error", err)
	}
}

// contentDisposition quotes or RFC 2231 encodes name as needed. Names that
// cannot be encoded at all are left off.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
