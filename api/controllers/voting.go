package controllers

import (
	"net/http"

	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/api/transport"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/gin-gonic/gin"
)

type VotingController struct {
	votes         *voting.VoteService
	authenticator transport.Authenticator
}

func NewVotingController(votes *voting.VoteService, authenticator transport.Authenticator) *VotingController {
	return &VotingController{
		votes:         votes,
		authenticator: authenticator,
	}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/polls", transport.AuthMiddleware(c.authenticator))

	group.POST("/:id/vote", c.submitVote)
}

// submitVote godoc
// @Summary Vote on a poll
// @Description Records the caller's ballot; every user votes once per poll
// @Tags voting
// @Accept json
// @Produce json
// @Security BearerToken
// @Param id path string true "Poll ID"
// @Param vote body models.SubmitVoteRequest true "Selected option ids"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid selection"
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Poll not found"
// @Failure 409 {object} models.ErrorResponse "Voting not open or already voted"
// @Failure 500 {object} models.ErrorResponse "Unexpected internal error"
// @Router /api/polls/{id}/vote [post]
func (c *VotingController) submitVote(g *gin.Context) {
	id, ok := pollIDParam(g)
	if !ok {
		return
	}

	var req models.SubmitVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	if err := c.votes.Submit(g.Request.Context(), id, transport.CallerFromContext(g), req.SelectedOptions); err != nil {
		writeError(g, err, "could not save vote")
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "vote registered"})
}
