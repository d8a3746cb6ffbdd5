package voting

import (
	"context"
	"testing"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.Log = logrus.New()
}

var now = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

var (
	admin    = Caller{UserID: "admin-1", Role: storage.RoleAdmin}
	creator  = Caller{UserID: "creator-1", Role: storage.RoleAdmin}
	someone  = Caller{UserID: "user-1", Role: storage.RoleNormal}
	expert   = Caller{UserID: "expert-1", Role: storage.RoleExpert}
	superAdm = Caller{UserID: "root", Role: storage.RoleSuperAdmin}
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func seedPoll(t *testing.T, polls storage.PollStorage, mutate func(p *storage.Poll)) *storage.Poll {
	t.Helper()
	p := &storage.Poll{
		ID:          "poll-1",
		Title:       "Lunch",
		Description: "Where do we eat",
		Type:        storage.PollTypeSingle,
		Options: []storage.Option{
			{ID: "o1", Text: "Pizza"},
			{ID: "o2", Text: "Sushi"},
			{ID: "o3", Text: "Tacos"},
		},
		CreatorID:    creator.UserID,
		ExpertVoters: []string{expert.UserID},
		StartTime:    now.Add(-time.Hour),
		EndTime:      now.Add(time.Hour),
		Status:       storage.PollStatusInProgress,
		ExpertWeight: 2,
		CreatedAt:    now.Add(-2 * time.Hour),
		UpdatedAt:    now.Add(-2 * time.Hour),
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, polls.Create(context.Background(), p))
	return p
}
