package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"regportal-go/middleware"
	"regportal-go/models"
	"regportal-go/submission"
	"regportal-go/utils"
)

func (h *Handlers) ApproveSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid submission id", err.Error())
		return
	}

	var req models.ApproveRequest
	// The body is optional for approvals.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.Comments = utils.SanitizeString(req.Comments)
	if err := utils.ValidateStruct(req); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return
	}

	sub, err := h.service.Approve(r.Context(), id, reviewerOf(r, req.ReviewerID), req.Comments)
	if err != nil {
		h.sendServiceError(w, r, "Failed to approve submission", err)
		return
	}

	h.logAudit(r, sub.ID, "SUBMISSION_APPROVED", "submission", req.Comments)
	sendJSON(w, http.StatusOK, SubmissionResponse{Submission: sub, State: submission.StateOf(sub).Kind()})
}

func (h *Handlers) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, http.StatusBadRequest, "Invalid submission id", err.Error())
		return
	}

	var req models.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.Comments = utils.SanitizeString(req.Comments)
	if err := utils.ValidateStruct(req); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return
	}

	sub, err := h.service.Reject(r.Context(), id, reviewerOf(r, req.ReviewerID), req.Comments)
	if err != nil {
		h.sendServiceError(w, r, "Failed to reject submission", err)
		return
	}

	h.logAudit(r, sub.ID, "SUBMISSION_REJECTED", "submission", req.Comments)
	sendJSON(w, http.StatusOK, SubmissionResponse{Submission: sub, State: submission.StateOf(sub).Kind()})
}

// reviewerOf prefers an explicit reviewer id and falls back to the caller.
func reviewerOf(r *http.Request, explicit *uint) uint {
	if explicit != nil {
		return *explicit
	}
	if claims := middleware.GetUserFromContext(r); claims != nil {
		return claims.UserID
	}
	return 0
}
