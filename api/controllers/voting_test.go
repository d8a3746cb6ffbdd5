package controllers

import (
	"context"
	"net/http"
	"testing"

	testutils "github.com/alex-pricope/online-voting-system/api/controllers/testing"
	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vote(app *testApp, pollID, token string, options ...string) int {
	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollID+"/vote",
		models.SubmitVoteRequest{SelectedOptions: options}, testutils.Bearer(token))
	return res.Code
}

func TestSubmitVote_WeightedTally(t *testing.T) {
	app := setupTestApp(t)
	_, normal := app.login(t, "normal", storage.RoleNormal)
	expertID, expert := app.login(t, "expert", storage.RoleExpert)
	app.seedPoll(t, pollA, func(p *storage.Poll) { p.ExpertVoters = []string{expertID} })

	require.Equal(t, http.StatusOK, vote(app, pollA, normal, "opt-a"))
	require.Equal(t, http.StatusOK, vote(app, pollA, expert, "opt-b"))

	stored, err := app.polls.Get(context.Background(), pollA)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Options[0].NormalVotes)
	assert.Equal(t, 1, stored.Options[1].ExpertVotes)

	res := testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.InDelta(t, 25.0, body.Options[0].Percentage, 1e-9)
	assert.InDelta(t, 75.0, body.Options[1].Percentage, 1e-9)
	assert.Equal(t, 2, body.TotalVotes)
}

func TestSubmitVote_OnlyOnce(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.login(t, "voter", storage.RoleNormal)
	app.seedPoll(t, pollA, nil)

	require.Equal(t, http.StatusOK, vote(app, pollA, token, "opt-a"))

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/vote",
		models.SubmitVoteRequest{SelectedOptions: []string{"opt-b"}}, testutils.Bearer(token))
	assert.Equal(t, http.StatusConflict, res.Code)
	var body models.ErrorResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Equal(t, "you have already voted on this poll", body.Error)

	assert.Len(t, app.votes.ByPoll(pollA), 1)
}

func TestSubmitVote_Rejections(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.login(t, "voter", storage.RoleNormal)
	app.seedPoll(t, pollA, nil)
	app.seedPoll(t, pollB, func(p *storage.Poll) { p.Status = storage.PollStatusEnded })
	app.seedPoll(t, pollC, func(p *storage.Poll) {
		p.Type = storage.PollTypeMultiple
		p.Options = append(p.Options, storage.Option{ID: "opt-c", Text: "C"})
		p.MaxChoices = intPtr(2)
	})

	assert.Equal(t, http.StatusBadRequest, vote(app, pollA, token, "opt-a", "opt-b"))
	assert.Equal(t, http.StatusBadRequest, vote(app, pollA, token, "nope"))
	assert.Equal(t, http.StatusBadRequest, vote(app, pollA, token))
	assert.Equal(t, http.StatusBadRequest, vote(app, pollC, token, "opt-a", "opt-b", "opt-c"))
	assert.Equal(t, http.StatusBadRequest, vote(app, pollC, token, "opt-a", "opt-a"))
	assert.Equal(t, http.StatusConflict, vote(app, pollB, token, "opt-a"))
	assert.Equal(t, http.StatusNotFound, vote(app, "6f1c2c36-1f5e-4f43-9d3e-1c8a4b0d0aff", token, "opt-a"))
	assert.Equal(t, http.StatusBadRequest, vote(app, "abc", token, "opt-a"))

	assert.Empty(t, app.votes.ByPoll(pollA))
	assert.Empty(t, app.votes.ByPoll(pollB))
	assert.Empty(t, app.votes.ByPoll(pollC))

	assert.Equal(t, http.StatusOK, vote(app, pollC, token, "opt-a", "opt-c"))
}

func TestSubmitVote_RequiresAuthentication(t *testing.T) {
	app := setupTestApp(t)
	app.seedPoll(t, pollA, nil)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/vote",
		models.SubmitVoteRequest{SelectedOptions: []string{"opt-a"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSubmitVote_BadBody(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.login(t, "voter", storage.RoleNormal)
	app.seedPoll(t, pollA, nil)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/vote",
		map[string]string{"selectedOptions": "opt-a"}, testutils.Bearer(token))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
