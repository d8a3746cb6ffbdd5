package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryPollStorage keeps polls in process. It backs local development
// (storage.driver: memory) and the test suites.
type MemoryPollStorage struct {
	mu    sync.Mutex
	polls map[string]*Poll
}

func NewMemoryPollStorage() *MemoryPollStorage {
	return &MemoryPollStorage{polls: make(map[string]*Poll)}
}

func clonePoll(p *Poll) *Poll {
	c := *p
	c.Options = append([]Option(nil), p.Options...)
	c.ExpertVoters = append([]string(nil), p.ExpertVoters...)
	if p.MaxChoices != nil {
		v := *p.MaxChoices
		c.MaxChoices = &v
	}
	return &c
}

func (s *MemoryPollStorage) Get(_ context.Context, id string) (*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return clonePoll(p), nil
}

func (s *MemoryPollStorage) GetAll(_ context.Context, filter PollFilter) ([]*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	polls := make([]*Poll, 0, len(s.polls))
	for _, p := range s.polls {
		if p.IsDeleted {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ExpertOnly && len(p.ExpertVoters) == 0 {
			continue
		}
		polls = append(polls, clonePoll(p))
	}
	sort.SliceStable(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

func (s *MemoryPollStorage) Create(_ context.Context, poll *Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[poll.ID]; ok {
		return ErrItemAlreadyExists
	}
	s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (s *MemoryPollStorage) Replace(_ context.Context, poll *Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.polls[poll.ID]
	if !ok || current.IsDeleted || current.Status != PollStatusNotStarted {
		return ErrConditionFailed
	}
	s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (s *MemoryPollStorage) UpdateDetails(_ context.Context, id string, details PollDetails, now time.Time) (*Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok || p.IsDeleted {
		return nil, ErrConditionFailed
	}
	if details.Description != nil {
		p.Description = *details.Description
	}
	if details.Banner != nil {
		p.Banner = *details.Banner
	}
	p.UpdatedAt = now.UTC()
	return clonePoll(p), nil
}

func (s *MemoryPollStorage) Close(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok || p.IsDeleted || p.Status == PollStatusEnded {
		return ErrConditionFailed
	}
	p.Status = PollStatusEnded
	p.EndTime = now.UTC()
	p.UpdatedAt = now.UTC()
	return nil
}

func (s *MemoryPollStorage) SoftDelete(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok || p.IsDeleted {
		return ErrConditionFailed
	}
	p.IsDeleted = true
	p.UpdatedAt = now.UTC()
	return nil
}

func (s *MemoryPollStorage) StartDue(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, p := range s.polls {
		if p.IsDeleted || p.Status != PollStatusNotStarted {
			continue
		}
		if !p.StartTime.After(now) && p.EndTime.After(now) {
			p.Status = PollStatusInProgress
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryPollStorage) EndDue(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, p := range s.polls {
		if p.IsDeleted || p.Status == PollStatusEnded {
			continue
		}
		if !p.EndTime.After(now) {
			p.Status = PollStatusEnded
			changed++
		}
	}
	return changed, nil
}

// MemoryVoteStorage shares the poll storage lock so a cast is atomic with the
// counter increments.
type MemoryVoteStorage struct {
	Polls *MemoryPollStorage
	votes map[string]*Vote
}

func NewMemoryVoteStorage(polls *MemoryPollStorage) *MemoryVoteStorage {
	return &MemoryVoteStorage{Polls: polls, votes: make(map[string]*Vote)}
}

func voteKey(pollID, voterID string) string {
	return pollID + "#" + voterID
}

func (s *MemoryVoteStorage) Exists(_ context.Context, pollID, voterID string) (bool, error) {
	s.Polls.mu.Lock()
	defer s.Polls.mu.Unlock()

	_, ok := s.votes[voteKey(pollID, voterID)]
	return ok, nil
}

func (s *MemoryVoteStorage) Cast(_ context.Context, poll *Poll, vote *Vote) error {
	s.Polls.mu.Lock()
	defer s.Polls.mu.Unlock()

	key := voteKey(vote.PollID, vote.VoterID)
	if _, ok := s.votes[key]; ok {
		return ErrVoteAlreadyExists
	}
	stored, ok := s.Polls.polls[poll.ID]
	if !ok || stored.IsDeleted || stored.Status != PollStatusInProgress {
		return ErrConditionFailed
	}

	indexes := make([]int, 0, len(vote.SelectedOptions))
	for _, optionID := range vote.SelectedOptions {
		idx := stored.OptionIndex(optionID)
		if idx < 0 {
			return fmt.Errorf("option %s is not part of poll %s", optionID, poll.ID)
		}
		indexes = append(indexes, idx)
	}
	for _, idx := range indexes {
		if vote.IsExpertVote {
			stored.Options[idx].ExpertVotes++
		} else {
			stored.Options[idx].NormalVotes++
		}
	}
	stored.UpdatedAt = vote.CreatedAt

	c := *vote
	c.SelectedOptions = append([]string(nil), vote.SelectedOptions...)
	s.votes[key] = &c
	return nil
}

// ByPoll returns the recorded votes of a poll.
func (s *MemoryVoteStorage) ByPoll(pollID string) []*Vote {
	s.Polls.mu.Lock()
	defer s.Polls.mu.Unlock()

	var votes []*Vote
	for _, v := range s.votes {
		if v.PollID == pollID {
			c := *v
			votes = append(votes, &c)
		}
	}
	return votes
}

type MemoryUserStorage struct {
	mu     sync.Mutex
	users  map[string]*User
	emails map[string]string
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{users: make(map[string]*User), emails: make(map[string]string)}
}

func (s *MemoryUserStorage) Get(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	c := *u
	return &c, nil
}

func (s *MemoryUserStorage) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	id, ok := s.emails[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return nil, ErrItemNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemoryUserStorage) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.emails[email]; ok {
		return ErrItemAlreadyExists
	}
	if _, ok := s.users[user.ID]; ok {
		return ErrItemAlreadyExists
	}
	c := *user
	s.users[user.ID] = &c
	s.emails[email] = user.ID
	return nil
}

func (s *MemoryUserStorage) UpdateRole(_ context.Context, id string, role Role, now time.Time) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	u.Role = role
	u.UpdatedAt = now.UTC()
	c := *u
	return &c, nil
}
