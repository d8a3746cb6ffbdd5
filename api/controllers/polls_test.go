package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	testutils "github.com/alex-pricope/online-voting-system/api/controllers/testing"
	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pollA = "6f1c2c36-1f5e-4f43-9d3e-1c8a4b0d0a01"
	pollB = "6f1c2c36-1f5e-4f43-9d3e-1c8a4b0d0a02"
	pollC = "6f1c2c36-1f5e-4f43-9d3e-1c8a4b0d0a03"
)

func createRequest() models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:       "Conference talk",
		Description: "Which talk goes first",
		Type:        storage.PollTypeMultiple,
		Options: []models.OptionRequest{
			{Text: "Generics"},
			{Text: "Fuzzing"},
			{Text: "Profiling"},
		},
		ExpertVoters: []string{"expert-1"},
		StartTime:    testNow.Add(-time.Minute),
		EndTime:      testNow.Add(time.Hour),
		MaxChoices:   intPtr(2),
	}
}

func intPtr(v int) *int { return &v }

func TestCreatePoll(t *testing.T) {
	app := setupTestApp(t)
	adminID, token := app.login(t, "admin", storage.RoleAdmin)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), testutils.Bearer(token))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "active", body.Status)
	assert.Equal(t, adminID, body.Creator)
	assert.Equal(t, 2.0, body.ExpertWeight)
	assert.True(t, body.IsExpertVote)
	require.Len(t, body.Options, 3)
	for _, o := range body.Options {
		assert.NotEmpty(t, o.ID)
		assert.Zero(t, o.Votes)
		assert.Zero(t, o.Percentage)
	}

	stored, err := app.polls.Get(context.Background(), body.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.PollStatusInProgress, stored.Status)
}

func TestCreatePoll_Authorization(t *testing.T) {
	app := setupTestApp(t)
	_, normal := app.login(t, "normal", storage.RoleNormal)
	_, expert := app.login(t, "expert", storage.RoleExpert)
	_, root := app.login(t, "root", storage.RoleSuperAdmin)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), testutils.Bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), testutils.Bearer(normal))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), testutils.Bearer(expert))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", createRequest(), testutils.Bearer(root))
	assert.Equal(t, http.StatusCreated, res.Code)
}

func TestCreatePoll_Invalid(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.login(t, "admin", storage.RoleAdmin)

	req := createRequest()
	req.EndTime = req.StartTime.Add(-time.Hour)
	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", req, testutils.Bearer(token))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	var body models.ErrorResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Contains(t, body.Error, "endTime")

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls", map[string]string{"title": "only"}, testutils.Bearer(token))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	all, err := app.polls.GetAll(context.Background(), storage.PollFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListPolls(t *testing.T) {
	app := setupTestApp(t)
	app.seedPoll(t, pollA, func(p *storage.Poll) {
		p.ExpertVoters = []string{"expert-1"}
		p.Options[0].NormalVotes = 2
		p.Options[1].ExpertVotes = 1
	})
	app.seedPoll(t, pollB, func(p *storage.Poll) {
		p.Status = storage.PollStatusNotStarted
		p.CreatedAt = testNow
	})
	app.seedPoll(t, pollC, func(p *storage.Poll) { p.IsDeleted = true })

	res := testutils.PerformRequest(app.router, http.MethodGet, "/api/polls", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body []models.PollSummaryResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	require.Len(t, body, 2)
	assert.Equal(t, pollB, body[0].ID)
	assert.Equal(t, "upcoming", body[0].Status)
	assert.Equal(t, pollA, body[1].ID)
	assert.Equal(t, "active", body[1].Status)
	assert.Equal(t, 3, body[1].TotalVotes)
	assert.True(t, body[1].IsExpertVote)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls?status=not_started", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, testutils.DecodeBody(res, &body))
	require.Len(t, body, 1)
	assert.Equal(t, pollB, body[0].ID)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls?expertOnly=true", nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, testutils.DecodeBody(res, &body))
	require.Len(t, body, 1)
	assert.Equal(t, pollA, body[0].ID)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls?status=paused", nil, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetPoll(t *testing.T) {
	app := setupTestApp(t)
	app.seedPoll(t, pollA, func(p *storage.Poll) {
		p.Options[0].NormalVotes = 1
		p.Options[1].ExpertVotes = 1
	})

	res := testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Equal(t, 2, body.TotalVotes)
	assert.False(t, body.HasVoted)
	require.Len(t, body.Options, 2)
	assert.InDelta(t, 25.0, body.Options[0].Percentage, 1e-9)
	assert.InDelta(t, 75.0, body.Options[1].Percentage, 1e-9)
	assert.Equal(t, 1, body.Options[1].Votes)
}

func TestGetPoll_HasVoted(t *testing.T) {
	app := setupTestApp(t)
	app.seedPoll(t, pollA, nil)
	_, token := app.login(t, "voter", storage.RoleNormal)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/vote",
		models.SubmitVoteRequest{SelectedOptions: []string{"opt-a"}}, testutils.Bearer(token))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, testutils.Bearer(token))
	require.Equal(t, http.StatusOK, res.Code)
	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.True(t, body.HasVoted)

	// A stale token still reads the poll anonymously.
	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, testutils.Bearer("stale"))
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.False(t, body.HasVoted)
}

func TestGetPoll_Errors(t *testing.T) {
	app := setupTestApp(t)
	app.seedPoll(t, pollC, func(p *storage.Poll) { p.IsDeleted = true })

	res := testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollC, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestUpdatePoll(t *testing.T) {
	app := setupTestApp(t)
	ownerID, owner := app.login(t, "owner", storage.RoleNormal)
	_, stranger := app.login(t, "stranger", storage.RoleNormal)
	app.seedPoll(t, pollA, func(p *storage.Poll) {
		p.CreatorID = ownerID
		p.Status = storage.PollStatusNotStarted
		p.StartTime = testNow.Add(time.Hour)
		p.EndTime = testNow.Add(2 * time.Hour)
	})

	title := "Renamed"
	res := testutils.PerformRequest(app.router, http.MethodPut, "/api/polls/"+pollA,
		models.UpdatePollRequest{Title: &title}, testutils.Bearer(stranger))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPut, "/api/polls/"+pollB,
		models.UpdatePollRequest{Title: &title}, testutils.Bearer(owner))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPut, "/api/polls/"+pollA,
		models.UpdatePollRequest{Title: &title}, testutils.Bearer(owner))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Equal(t, "Renamed", body.Title)
	assert.Equal(t, "upcoming", body.Status)

	res = testutils.PerformRequest(app.router, http.MethodPut, "/api/polls/"+pollA,
		models.UpdatePollRequest{Title: &title}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestUpdatePoll_StartedIgnoresStructuralFields(t *testing.T) {
	app := setupTestApp(t)
	_, admin := app.login(t, "admin", storage.RoleAdmin)
	app.seedPoll(t, pollA, nil)

	title := "Ignored"
	banner := "/uploads/new-banner.png"
	res := testutils.PerformRequest(app.router, http.MethodPut, "/api/polls/"+pollA,
		models.UpdatePollRequest{Title: &title, Banner: &banner}, testutils.Bearer(admin))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var body models.PollDetailResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Equal(t, "Best framework", body.Title)
	assert.Equal(t, banner, body.Banner)
}

func TestClosePoll(t *testing.T) {
	app := setupTestApp(t)
	_, admin := app.login(t, "admin", storage.RoleAdmin)
	_, normal := app.login(t, "normal", storage.RoleNormal)
	app.seedPoll(t, pollA, nil)

	res := testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/close", nil, testutils.Bearer(normal))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/close", nil, testutils.Bearer(admin))
	require.Equal(t, http.StatusOK, res.Code)

	stored, err := app.polls.Get(context.Background(), pollA)
	require.NoError(t, err)
	assert.Equal(t, storage.PollStatusEnded, stored.Status)
	assert.Equal(t, testNow, stored.EndTime)

	res = testutils.PerformRequest(app.router, http.MethodPost, "/api/polls/"+pollA+"/close", nil, testutils.Bearer(admin))
	assert.Equal(t, http.StatusConflict, res.Code)
	var body models.ErrorResponse
	require.NoError(t, testutils.DecodeBody(res, &body))
	assert.Equal(t, "poll already ended", body.Error)
}

func TestDeletePoll(t *testing.T) {
	app := setupTestApp(t)
	_, admin := app.login(t, "admin", storage.RoleAdmin)
	app.seedPoll(t, pollA, nil)

	res := testutils.PerformRequest(app.router, http.MethodDelete, "/api/polls/"+pollA, nil, testutils.Bearer(admin))
	require.Equal(t, http.StatusOK, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodGet, "/api/polls/"+pollA, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodDelete, "/api/polls/"+pollA, nil, testutils.Bearer(admin))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = testutils.PerformRequest(app.router, http.MethodDelete, "/api/polls/bad-id", nil, testutils.Bearer(admin))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
