package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type VoteService struct {
	polls storage.PollStorage
	votes storage.VoteStorage
	clock clockwork.Clock
}

func NewVoteService(polls storage.PollStorage, votes storage.VoteStorage, clock clockwork.Clock) *VoteService {
	return &VoteService{
		polls: polls,
		votes: votes,
		clock: clock,
	}
}

// Submit records the voter's ballot. Preconditions are checked in order and
// each fails with its own error; the store's (poll, voter) uniqueness is the
// final guard against a concurrent second ballot.
func (s *VoteService) Submit(ctx context.Context, pollID string, voter Caller, selected []string) error {
	poll, err := s.polls.Get(ctx, pollID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return ErrPollNotFound
		}
		return fmt.Errorf("load poll %s: %w", pollID, err)
	}
	if poll.IsDeleted {
		return ErrPollNotFound
	}
	if poll.Status != storage.PollStatusInProgress {
		return ErrVotingNotOpen
	}

	voted, err := s.votes.Exists(ctx, pollID, voter.UserID)
	if err != nil {
		return fmt.Errorf("check existing vote: %w", err)
	}
	if voted {
		return ErrAlreadyVoted
	}

	if err := checkSelection(poll, selected); err != nil {
		return err
	}

	vote := &storage.Vote{
		ID:              uuid.NewString(),
		PollID:          poll.ID,
		VoterID:         voter.UserID,
		SelectedOptions: append([]string(nil), selected...),
		IsExpertVote:    poll.IsExpertVoter(voter.UserID),
		CreatedAt:       s.clock.Now().UTC(),
	}

	if err := s.votes.Cast(ctx, poll, vote); err != nil {
		switch {
		case errors.Is(err, storage.ErrVoteAlreadyExists):
			return ErrAlreadyVoted
		case errors.Is(err, storage.ErrConditionFailed):
			return ErrVotingNotOpen
		default:
			return fmt.Errorf("cast vote: %w", err)
		}
	}

	logging.Log.Infof("VOTE: voter %s voted on poll %s (expert=%t, options=%d)", voter.UserID, poll.ID, vote.IsExpertVote, len(selected))
	return nil
}

func (s *VoteService) HasVoted(ctx context.Context, pollID, voterID string) (bool, error) {
	if voterID == "" {
		return false, nil
	}
	return s.votes.Exists(ctx, pollID, voterID)
}

func checkSelection(poll *storage.Poll, selected []string) error {
	if len(selected) == 0 {
		return ErrEmptySelection
	}
	if poll.Type == storage.PollTypeSingle && len(selected) != 1 {
		return ErrSingleChoiceViolation
	}
	if poll.MaxChoices != nil && len(selected) > *poll.MaxChoices {
		return fmt.Errorf("%w: at most %d options", ErrChoiceLimitExceeded, *poll.MaxChoices)
	}

	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			return ErrDuplicateOption
		}
		seen[id] = struct{}{}
		if poll.OptionIndex(id) < 0 {
			return ErrUnknownOption
		}
	}
	return nil
}
