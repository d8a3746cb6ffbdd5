package controllers

import (
	"errors"
	"net/http"

	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps a service error onto the HTTP status and body the clients
// expect. Unknown errors are logged and reported as a generic 500.
func writeError(g *gin.Context, err error, fallback string) {
	var verr *voting.ValidationError
	switch {
	case errors.As(err, &verr):
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: verr.Error()})
	case errors.Is(err, voting.ErrEmptySelection),
		errors.Is(err, voting.ErrSingleChoiceViolation),
		errors.Is(err, voting.ErrChoiceLimitExceeded),
		errors.Is(err, voting.ErrDuplicateOption),
		errors.Is(err, voting.ErrUnknownOption),
		errors.Is(err, auth.ErrInvalidRole):
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, voting.ErrPollNotFound),
		errors.Is(err, voting.ErrNotFoundOrForbidden),
		errors.Is(err, auth.ErrUserNotFound):
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, voting.ErrAlreadyVoted),
		errors.Is(err, voting.ErrVotingNotOpen),
		errors.Is(err, voting.ErrPollAlreadyEnded),
		errors.Is(err, voting.ErrPollStateChanged),
		errors.Is(err, auth.ErrEmailTaken):
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, voting.ErrForbidden):
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrInvalidToken):
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: err.Error()})
	default:
		logging.Log.Errorf("%s: %v", fallback, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: fallback})
	}
}

// pollIDParam reads the :id path parameter and rejects malformed ids with 400.
func pollIDParam(g *gin.Context) (string, bool) {
	id := g.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid poll id"})
		return "", false
	}
	return id, true
}
