package handlers

import (
	"net/http"

	"regportal-go/middleware"
	"regportal-go/submission"
)

func (h *Handlers) GetValidationResult(w http.ResponseWriter, r *http.Request) {
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
		h.sendServiceError(w, r, "Failed to fetch validation result", err)
		return
	}

	res, err := h.service.ValidationResult(r.Context(), id)
	if err != nil {
		h.sendServiceError(w, r, "Failed to fetch validation result", err)
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// ListValidationResults is a regulator dashboard query; bank users are
// refused rather than filtered because results carry no bank column.
func (h *Handlers) ListValidationResults(w http.ResponseWriter, r *http.Request) {
	if isBankUser(middleware.GetUserFromContext(r)) {
		sendError(w, http.StatusForbidden, "regulator access required", nil)
		return
	}

	results, err := h.service.ValidationResults(r.Context(), submission.ResultFilter{
		MinErrors:   queryInt(r, "min_errors"),
		MinWarnings: queryInt(r, "min_warnings"),
		Page:        queryInt(r, "page"),
		Limit:       queryInt(r, "limit"),
	})
	if err != nil {
		h.sendServiceError(w, r, "Failed to fetch validation results", err)
		return
	}
	sendJSON(w, http.StatusOK, results)
}
