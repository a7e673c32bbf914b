package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pennyjar/internal/security"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": userMsg})
}

// respondServiceError translates service errors into HTTP responses. Errors
// without a mapping are treated as internal and logged with logMsg.
func respondServiceError(w http.ResponseWriter, logMsg string, err error) {
	var validationErr validation.ValidationError
	if errors.As(err, &validationErr) {
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
		return
	}

	if status, ok := statusForError(err); ok {
		respondWithError(w, status, err.Error(), "", nil)
		return
	}

	respondWithError(w, http.StatusInternalServerError, "Internal server error", logMsg, err)
}

func statusForError(err error) (int, bool) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.status, true
		}
	}
	return 0, false
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidRefresh, http.StatusUnauthorized},
	{security.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrNotFamilyMember, http.StatusForbidden},

	{service.ErrFamilyNotFound, http.StatusNotFound},
	{service.ErrChildNotFound, http.StatusNotFound},
	{service.ErrGoalNotFound, http.StatusNotFound},
	{service.ErrChoreNotFound, http.StatusNotFound},
	{service.ErrGiftLinkNotFound, http.StatusNotFound},
	{service.ErrGiftNotFound, http.StatusNotFound},
	{service.ErrRewardNotFound, http.StatusNotFound},
	{service.ErrDeviceNotFound, http.StatusNotFound},
	{service.ErrChallengeNotFound, http.StatusNotFound},

	{service.ErrGiftLinkClosed, http.StatusGone},

	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrAlreadyInFamily, http.StatusConflict},
	{service.ErrChildAlreadyHere, http.StatusConflict},
	{service.ErrChildHasNoLogin, http.StatusConflict},
	{service.ErrGoalNotOpen, http.StatusConflict},
	{service.ErrGoalNotCompleted, http.StatusConflict},
	{service.ErrChallengeActive, http.StatusConflict},
	{service.ErrRuleActive, http.StatusConflict},
	{service.ErrChoreNotOpen, http.StatusConflict},
	{service.ErrChoreNotClaimed, http.StatusConflict},
	{service.ErrChoreUnassigned, http.StatusConflict},
	{service.ErrNoteExists, http.StatusConflict},
	{service.ErrAllowancePaused, http.StatusConflict},
	{service.ErrNotAllowanceDay, http.StatusConflict},
	{service.ErrAlreadyPaid, http.StatusConflict},

	{service.ErrInvalidInvite, http.StatusBadRequest},
	{service.ErrUnknownProvider, http.StatusBadRequest},
	{service.ErrNoAllowanceSet, http.StatusBadRequest},

	{service.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{service.ErrInsufficientSavings, http.StatusUnprocessableEntity},
	{service.ErrInsufficientPoint, http.StatusUnprocessableEntity},
	{service.ErrWithdrawTooLarge, http.StatusUnprocessableEntity},

	{service.ErrStorageDisabled, http.StatusServiceUnavailable},
}
