package controllers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	router *gin.Engine
	clock  *clockwork.FakeClock
	polls  *storage.MemoryPollStorage
	votes  *storage.MemoryVoteStorage
	users  *storage.MemoryUserStorage
	auth   *auth.Service
	redis  *miniredis.Miniredis
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	logging.Log = logrus.New()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := clockwork.NewFakeClockAt(testNow)
	polls := storage.NewMemoryPollStorage()
	votes := storage.NewMemoryVoteStorage(polls)
	users := storage.NewMemoryUserStorage()

	authService := auth.NewService(users, &storage.RedisSessionStorage{Client: client},
		auth.NewTokenIssuer("controller-test-secret", 24*time.Hour, clock), clock,
		auth.Config{SessionTTL: 24 * time.Hour})
	pollService := voting.NewPollService(polls, clock)
	voteService := voting.NewVoteService(polls, votes, clock)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewPollController(pollService, voteService, authService).RegisterRoutes(r)
	NewVotingController(voteService, authService).RegisterRoutes(r)
	NewAuthController(authService).RegisterRoutes(r)

	return &testApp{
		router: r,
		clock:  clock,
		polls:  polls,
		votes:  votes,
		users:  users,
		auth:   authService,
		redis:  mr,
	}
}

// login registers a user with the given role and returns its id and token.
func (a *testApp) login(t *testing.T, name string, role storage.Role) (string, string) {
	t.Helper()
	ctx := context.Background()
	email := fmt.Sprintf("%s@example.com", name)

	registered, err := a.auth.Register(ctx, email, "password-123", name)
	require.NoError(t, err)
	if role != storage.RoleNormal {
		_, err = a.users.UpdateRole(ctx, registered.User.ID, role, testNow)
		require.NoError(t, err)
	}

	res, err := a.auth.Login(ctx, email, "password-123")
	require.NoError(t, err)
	return res.User.ID, res.Token
}

func (a *testApp) seedPoll(t *testing.T, id string, mutate func(p *storage.Poll)) *storage.Poll {
	t.Helper()
	p := &storage.Poll{
		ID:          id,
		Title:       "Best framework",
		Description: "Pick one",
		Type:        storage.PollTypeSingle,
		Options: []storage.Option{
			{ID: "opt-a", Text: "A"},
			{ID: "opt-b", Text: "B"},
		},
		CreatorID:    "someone-else",
		StartTime:    testNow.Add(-time.Hour),
		EndTime:      testNow.Add(time.Hour),
		Status:       storage.PollStatusInProgress,
		ExpertWeight: 3,
		CreatedAt:    testNow.Add(-2 * time.Hour),
		UpdatedAt:    testNow.Add(-2 * time.Hour),
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, a.polls.Create(context.Background(), p))
	return p
}
