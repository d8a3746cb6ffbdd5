package controllers

import (
	"net/http"
	"strconv"

	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/api/transport"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/gin-gonic/gin"
)

type PollController struct {
	polls         *voting.PollService
	votes         *voting.VoteService
	authenticator transport.Authenticator
}

func NewPollController(polls *voting.PollService, votes *voting.VoteService, authenticator transport.Authenticator) *PollController {
	return &PollController{
		polls:         polls,
		votes:         votes,
		authenticator: authenticator,
	}
}

func (c *PollController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/polls")

	group.GET("", c.list)
	group.GET("/:id", transport.OptionalAuth(c.authenticator), c.get)

	authed := group.Group("", transport.AuthMiddleware(c.authenticator))
	authed.POST("", transport.RequireRoles(storage.RoleAdmin, storage.RoleSuperAdmin), c.create)
	authed.PUT("/:id", c.update)
	authed.POST("/:id/close", c.close)
	authed.DELETE("/:id", c.delete)
}

// list godoc
// @Summary List polls
// @Description Returns live polls, newest first
// @Tags polls
// @Produce json
// @Param status query string false "Stored status filter (not_started, in_progress, ended)"
// @Param expertOnly query bool false "Only polls with expert voters"
// @Success 200 {array} models.PollSummaryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls [get]
func (c *PollController) list(g *gin.Context) {
	filter := storage.PollFilter{}
	if status := g.Query("status"); status != "" {
		switch storage.PollStatus(status) {
		case storage.PollStatusNotStarted, storage.PollStatusInProgress, storage.PollStatusEnded:
			filter.Status = storage.PollStatus(status)
		default:
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid status filter"})
			return
		}
	}
	if expertOnly := g.Query("expertOnly"); expertOnly != "" {
		v, err := strconv.ParseBool(expertOnly)
		if err != nil {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid expertOnly filter"})
			return
		}
		filter.ExpertOnly = v
	}

	polls, err := c.polls.List(g.Request.Context(), filter)
	if err != nil {
		writeError(g, err, "could not list polls")
		return
	}

	response := make([]models.PollSummaryResponse, 0, len(polls))
	for _, p := range polls {
		response = append(response, models.TransformPollSummaryFromStorage(p))
	}
	g.JSON(http.StatusOK, response)
}

// get godoc
// @Summary Get a poll
// @Description Returns the poll with per option votes and weighted percentages
// @Tags polls
// @Produce json
// @Security BearerToken
// @Param id path string true "Poll ID"
// @Success 200 {object} models.PollDetailResponse
// @Failure 400 {object} models.ErrorResponse "Invalid poll id"
// @Failure 404 {object} models.ErrorResponse "Poll not found"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls/{id} [get]
func (c *PollController) get(g *gin.Context) {
	id, ok := pollIDParam(g)
	if !ok {
		return
	}

	poll, err := c.polls.Get(g.Request.Context(), id)
	if err != nil {
		writeError(g, err, "could not load poll")
		return
	}

	hasVoted, err := c.votes.HasVoted(g.Request.Context(), id, transport.CallerFromContext(g).UserID)
	if err != nil {
		writeError(g, err, "could not load poll")
		return
	}

	g.JSON(http.StatusOK, models.TransformPollDetailFromStorage(poll, hasVoted))
}

// create godoc
// @Summary Create a poll
// @Description Admins create a poll; its status is derived from the time window
// @Tags polls
// @Accept json
// @Produce json
// @Security BearerToken
// @Param poll body models.CreatePollRequest true "Poll"
// @Success 201 {object} models.PollDetailResponse
// @Failure 400 {object} models.ErrorResponse "Invalid poll"
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls [post]
func (c *PollController) create(g *gin.Context) {
	var req models.CreatePollRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Warnf("POLL: invalid create request: %v", err)
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	poll, err := c.polls.Create(g.Request.Context(), transport.CallerFromContext(g), models.TransformPollInput(&req))
	if err != nil {
		writeError(g, err, "could not create poll")
		return
	}
	g.JSON(http.StatusCreated, models.TransformPollDetailFromStorage(poll, false))
}

// update godoc
// @Summary Update a poll
// @Description Before the poll starts every field can change; afterwards only description and banner are applied
// @Tags polls
// @Accept json
// @Produce json
// @Security BearerToken
// @Param id path string true "Poll ID"
// @Param poll body models.UpdatePollRequest true "Fields to change"
// @Success 200 {object} models.PollDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Poll not found or not authorized"
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls/{id} [put]
func (c *PollController) update(g *gin.Context) {
	id, ok := pollIDParam(g)
	if !ok {
		return
	}

	var req models.UpdatePollRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Warnf("POLL: invalid update request: %v", err)
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	poll, err := c.polls.Update(g.Request.Context(), transport.CallerFromContext(g), id, models.TransformPollUpdate(&req))
	if err != nil {
		writeError(g, err, "could not update poll")
		return
	}
	g.JSON(http.StatusOK, models.TransformPollDetailFromStorage(poll, false))
}

// close godoc
// @Summary Close a poll early
// @Tags polls
// @Produce json
// @Security BearerToken
// @Param id path string true "Poll ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Poll not found or not authorized"
// @Failure 409 {object} models.ErrorResponse "Poll already ended"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls/{id}/close [post]
func (c *PollController) close(g *gin.Context) {
	id, ok := pollIDParam(g)
	if !ok {
		return
	}

	if err := c.polls.Close(g.Request.Context(), transport.CallerFromContext(g), id); err != nil {
		writeError(g, err, "could not close poll")
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "poll closed"})
}

// delete godoc
// @Summary Delete a poll
// @Tags polls
// @Produce json
// @Security BearerToken
// @Param id path string true "Poll ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Poll not found or not authorized"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/polls/{id} [delete]
func (c *PollController) delete(g *gin.Context) {
	id, ok := pollIDParam(g)
	if !ok {
		return
	}

	if err := c.polls.Delete(g.Request.Context(), transport.CallerFromContext(g), id); err != nil {
		writeError(g, err, "could not delete poll")
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "poll deleted"})
}
