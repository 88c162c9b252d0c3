package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"regportal-go/ingest"
	"regportal-go/middleware"
	"regportal-go/models"
	"regportal-go/schema"
	"regportal-go/submission"
	"regportal-go/utils"
)

const multipartMemory = 32 << 20

type RejectedFile struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

type StoredFile struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type ValidationSummary struct {
	Status        models.ValidationStatus `json:"status"`
	TotalErrors   int                     `json:"total_errors"`
	TotalWarnings int                     `json:"total_warnings"`
	Errors        []string                `json:"errors"`
	Warnings      []string                `json:"warnings"`
	Files         []ingest.FileOutcome    `json:"files"`
}

type UploadResponse struct {
	SubmissionID  uint                    `json:"submission_id"`
	Status        models.SubmissionStatus `json:"status"`
	Validation    ValidationSummary       `json:"validation"`
	Files         []StoredFile            `json:"files"`
	RejectedFiles []RejectedFile          `json:"rejected_files"`
}

// SubmissionResponse is a stored submission plus its internal lifecycle state.
type SubmissionResponse struct {
	*models.Submission
	State string `json:"state"`
}

func (h *Handlers) UploadSubmission(w http.ResponseWriter, r *http.Request) {
	limits := h.config.Upload
	r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxFiles)*limits.MaxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := models.UploadRequest{
		BankID:     utils.SanitizeString(r.FormValue("bank_id")),
		UserID:     utils.SanitizeString(r.FormValue("user_id")),
		Period:     utils.SanitizeString(r.FormValue("period")),
		ReturnType: utils.SanitizeString(r.FormValue("return_type")),
	}

	fieldErrs := map[string]string{}
	if err := utils.ValidateStruct(req); err != nil {
		fieldErrs = utils.FormatValidationError(err)
	}
	bankID := parseFormID(fieldErrs, "bank_id", req.BankID)
	userID := parseFormID(fieldErrs, "user_id", req.UserID)
	accepted, rejected := h.screenFiles(r.MultipartForm.File["files"], fieldErrs)

	if len(fieldErrs) > 0 {
		sendError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	if !visibleTo(r, bankID) {
		sendError(w, http.StatusForbidden, "Cannot submit on behalf of another bank", nil)
		return
	}

	uploads := make([]submission.Upload, 0, len(accepted))
	for _, fh := range accepted {
		f, err := fh.Open()
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to read uploaded file", nil)
			return
		}
		defer f.Close()

		name := filepath.Base(fh.Filename)
		uploads = append(uploads, submission.Upload{
			Name:     name,
			MimeType: ingest.ContentType(name),
			Content:  f,
		})
	}

	res, err := h.service.Submit(r.Context(), submission.SubmitInput{
		BankID:     bankID,
		UserID:     userID,
		Period:     req.Period,
		ReturnType: schema.ReturnType(req.ReturnType),
		Files:      uploads,
	})
	if err != nil {
		h.sendServiceError(w, r, "Failed to process submission", err)
		return
	}

	sub := res.Submission
	h.logAudit(r, sub.ID, "SUBMISSION_UPLOADED", "submission",
		fmt.Sprintf("%s %s: %d file(s), status %s", sub.ReturnType, sub.Period, len(res.Files), sub.Status))

	files := make([]StoredFile, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, StoredFile{ID: f.ID, Name: f.FileName, Size: f.Size})
	}

	sendJSON(w, http.StatusCreated, UploadResponse{
		SubmissionID: sub.ID,
		Status:       sub.Status,
		Validation: ValidationSummary{
			Status:        res.Summary.Status,
			TotalErrors:   res.Summary.TotalErrors,
			TotalWarnings: res.Summary.TotalWarnings,
			Errors:        res.Summary.Errors(),
			Warnings:      res.Summary.Warnings(),
			Files:         res.Summary.Files,
		},
		Files:         files,
		RejectedFiles: rejected,
	})
}

// screenFiles drops non-spreadsheet attachments and records count and size
// violations in fieldErrs.
func (h *Handlers) screenFiles(headers []*multipart.FileHeader, fieldErrs map[string]string) ([]*multipart.FileHeader, []RejectedFile) {
	limits := h.config.Upload
	accepted := make([]*multipart.FileHeader, 0, len(headers))
	rejected := []RejectedFile{}

	if len(headers) == 0 {
		fieldErrs["files"] = "At least one file is required"
		return accepted, rejected
	}

	var problems []string
	if len(headers) > limits.MaxFiles {
		problems = append(problems, fmt.Sprintf("At most %d files may be uploaded", limits.MaxFiles))
	}
	for _, fh := range headers {
		name := filepath.Base(fh.Filename)
		if !ingest.IsSpreadsheet(name) {
			rejected = append(rejected, RejectedFile{
				FileName: name,
				Reason:   "Only Excel-compatible spreadsheet files are accepted",
			})
			continue
		}
		if fh.Size > limits.MaxFileSize {
			problems = append(problems, fmt.Sprintf("%s exceeds the %d byte limit", name, limits.MaxFileSize))
			continue
		}
		accepted = append(accepted, fh)
	}
	if len(problems) == 0 && len(accepted) == 0 {
		problems = append(problems, "No spreadsheet files were provided")
	}
	if len(problems) > 0 {
		fieldErrs["files"] = strings.Join(problems, "; ")
	}
	return accepted, rejected
}

func isBankUser(claims *utils.Claims) bool {
	return claims != nil && claims.Role == models.RoleBank && claims.BankID != nil
}

// visibleTo reports whether the caller may see filings of bankID. Bank users
// are confined to their own bank.
func visibleTo(r *http.Request, bankID uint) bool {
	claims := middleware.GetUserFromContext(r)
	return !isBankUser(claims) || *claims.BankID == bankID
}

func parseFormID(fieldErrs map[string]string, field, raw string) uint {
	if _, failed := fieldErrs[field]; failed {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fieldErrs[field] = field + " must be a positive integer"
		return 0
	}
	return uint(id)
}

func (h *Handlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid submission id", err.Error())
		return
	}

	sub, err := h.service.Get(r.Context(), id)
	if err == nil && !visibleTo(r, sub.BankID) {
		err = submission.ErrNotFound
	}
	if err != nil {
		h.sendServiceError(w, r, "Failed to fetch submission", err)
		return
	}

	sendJSON(w, http.StatusOK, SubmissionResponse{Submission: sub, State: submission.StateOf(sub).Kind()})
}

func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := submission.SubmissionFilter{
		ReturnType: q.Get("return_type"),
		Status:     q.Get("status"),
		Period:     q.Get("period"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	if raw := q.Get("bank_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			sendError(w, http.StatusBadRequest, "Invalid bank_id filter", nil)
			return
		}
		bankID := uint(id)
		filter.BankID = &bankID
	}

	if claims := middleware.GetUserFromContext(r); isBankUser(claims) {
		filter.BankID = claims.BankID
	}

	subs, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.sendServiceError(w, r, "Failed to fetch submissions", err)
		return
	}

	out := make([]SubmissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, SubmissionResponse{Submission: &subs[i], State: submission.StateOf(&subs[i]).Kind()})
	}
	sendJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid submission id", err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.sendServiceError(w, r, "Failed to delete submission", err)
		return
	}

	h.logAudit(r, id, "SUBMISSION_DELETED", "submission", "")
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Submission deleted",
		"submission_id": id,
	})
}
