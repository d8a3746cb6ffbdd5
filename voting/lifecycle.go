package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	optionIDAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	optionIDLength     = 12
	maxReplaceAttempts = 3
)

type OptionInput struct {
	ID          string
	Text        string
	Description string
	ImageURL    string
}

type PollInput struct {
	Title        string
	Description  string
	Type         storage.PollType
	Options      []OptionInput
	ExpertVoters []string
	StartTime    time.Time
	EndTime      time.Time
	MaxChoices   *int
	ExpertWeight *float64
	Banner       string
}

// PollUpdate holds the requested changes; nil fields are left untouched.
type PollUpdate struct {
	Title        *string
	Description  *string
	Type         *storage.PollType
	Options      *[]OptionInput
	ExpertVoters *[]string
	StartTime    *time.Time
	EndTime      *time.Time
	MaxChoices   *int
	ExpertWeight *float64
	Banner       *string
}

type PollService struct {
	polls storage.PollStorage
	clock clockwork.Clock
}

func NewPollService(polls storage.PollStorage, clock clockwork.Clock) *PollService {
	return &PollService{
		polls: polls,
		clock: clock,
	}
}

func (s *PollService) List(ctx context.Context, filter storage.PollFilter) ([]*storage.Poll, error) {
	polls, err := s.polls.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return polls, nil
}

// Get returns a live poll; soft deleted polls are reported as not found.
func (s *PollService) Get(ctx context.Context, id string) (*storage.Poll, error) {
	poll, err := s.polls.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("load poll %s: %w", id, err)
	}
	if poll.IsDeleted {
		return nil, ErrPollNotFound
	}
	return poll, nil
}

func (s *PollService) Create(ctx context.Context, caller Caller, in PollInput) (*storage.Poll, error) {
	if !CanCreatePoll(caller) {
		return nil, ErrForbidden
	}

	options, err := newOptions(in.Options, false)
	if err != nil {
		return nil, err
	}

	weight := DefaultExpertWeight
	if in.ExpertWeight != nil {
		weight = *in.ExpertWeight
	}

	now := s.clock.Now().UTC()
	poll := &storage.Poll{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Type:         in.Type,
		Options:      options,
		CreatorID:    caller.UserID,
		ExpertVoters: uniqueIDs(in.ExpertVoters),
		StartTime:    in.StartTime.UTC(),
		EndTime:      in.EndTime.UTC(),
		Status:       StatusAt(in.StartTime, in.EndTime, now),
		MaxChoices:   in.MaxChoices,
		ExpertWeight: weight,
		Banner:       in.Banner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ValidatePoll(poll); err != nil {
		return nil, err
	}

	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}
	logging.Log.Infof("POLL: %s created poll %s with status %s", caller.UserID, poll.ID, poll.Status)
	return poll, nil
}

// Update applies every requested field while the poll has not started. Once it
// started only description and banner are applied and the rest is ignored.
func (s *PollService) Update(ctx context.Context, caller Caller, id string, upd PollUpdate) (*storage.Poll, error) {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		poll, err := s.loadManaged(ctx, caller, id)
		if err != nil {
			return nil, err
		}

		if poll.Status != storage.PollStatusNotStarted {
			return s.updateDetails(ctx, id, upd)
		}

		if err := s.applyUpdate(poll, upd); err != nil {
			return nil, err
		}
		err = s.polls.Replace(ctx, poll)
		if err == nil {
			logging.Log.Infof("POLL: %s updated poll %s", caller.UserID, id)
			return poll, nil
		}
		if !errors.Is(err, storage.ErrConditionFailed) {
			return nil, fmt.Errorf("replace poll %s: %w", id, err)
		}
		// The poll started or was deleted after we read it; reload and retry.
		logging.Log.Warnf("POLL: poll %s changed during update, attempt %d", id, attempt+1)
	}
	return nil, ErrPollStateChanged
}

func (s *PollService) updateDetails(ctx context.Context, id string, upd PollUpdate) (*storage.Poll, error) {
	details := storage.PollDetails{Description: upd.Description, Banner: upd.Banner}
	if err := ValidateDetails(details); err != nil {
		return nil, err
	}
	poll, err := s.polls.UpdateDetails(ctx, id, details, s.clock.Now())
	if err != nil {
		if errors.Is(err, storage.ErrConditionFailed) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("update poll details %s: %w", id, err)
	}
	return poll, nil
}

func (s *PollService) applyUpdate(poll *storage.Poll, upd PollUpdate) error {
	if upd.Title != nil {
		poll.Title = *upd.Title
	}
	if upd.Description != nil {
		poll.Description = *upd.Description
	}
	if upd.Type != nil {
		poll.Type = *upd.Type
		if poll.Type == storage.PollTypeSingle && upd.MaxChoices == nil {
			poll.MaxChoices = nil
		}
	}
	if upd.Options != nil {
		options, err := newOptions(*upd.Options, true)
		if err != nil {
			return err
		}
		poll.Options = options
	}
	if upd.ExpertVoters != nil {
		poll.ExpertVoters = uniqueIDs(*upd.ExpertVoters)
	}
	if upd.StartTime != nil {
		poll.StartTime = upd.StartTime.UTC()
	}
	if upd.EndTime != nil {
		poll.EndTime = upd.EndTime.UTC()
	}
	if upd.MaxChoices != nil {
		poll.MaxChoices = upd.MaxChoices
	}
	if upd.ExpertWeight != nil {
		poll.ExpertWeight = *upd.ExpertWeight
	}
	if upd.Banner != nil {
		poll.Banner = *upd.Banner
	}

	now := s.clock.Now().UTC()
	// A new window may already have opened or passed; the sweep only moves
	// polls forward from their stored status.
	poll.Status = StatusAt(poll.StartTime, poll.EndTime, now)
	poll.UpdatedAt = now
	return ValidatePoll(poll)
}

// Close ends a poll early: status becomes ended and the end time is now.
func (s *PollService) Close(ctx context.Context, caller Caller, id string) error {
	poll, err := s.loadManaged(ctx, caller, id)
	if err != nil {
		return err
	}
	if poll.Status == storage.PollStatusEnded {
		return ErrPollAlreadyEnded
	}

	if err := s.polls.Close(ctx, id, s.clock.Now()); err != nil {
		if !errors.Is(err, storage.ErrConditionFailed) {
			return fmt.Errorf("close poll %s: %w", id, err)
		}
		current, getErr := s.polls.Get(ctx, id)
		if getErr == nil && !current.IsDeleted && current.Status == storage.PollStatusEnded {
			return ErrPollAlreadyEnded
		}
		return ErrNotFoundOrForbidden
	}
	logging.Log.Infof("POLL: %s closed poll %s early", caller.UserID, id)
	return nil
}

func (s *PollService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.loadManaged(ctx, caller, id); err != nil {
		return err
	}
	if err := s.polls.SoftDelete(ctx, id, s.clock.Now()); err != nil {
		if errors.Is(err, storage.ErrConditionFailed) {
			return ErrNotFoundOrForbidden
		}
		return fmt.Errorf("delete poll %s: %w", id, err)
	}
	logging.Log.Infof("POLL: %s deleted poll %s", caller.UserID, id)
	return nil
}

// loadManaged returns the poll when it exists, is live and the caller may
// manage it. All three failures collapse into ErrNotFoundOrForbidden.
func (s *PollService) loadManaged(ctx context.Context, caller Caller, id string) (*storage.Poll, error) {
	poll, err := s.polls.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("load poll %s: %w", id, err)
	}
	if poll.IsDeleted || !CanManagePoll(caller, poll) {
		logging.Log.Warnf("POLL: %s may not manage poll %s", caller.UserID, id)
		return nil, ErrNotFoundOrForbidden
	}
	return poll, nil
}

// newOptions builds options with zeroed counters. Supplied ids are kept when
// keepIDs is set and the id is not already taken.
func newOptions(in []OptionInput, keepIDs bool) ([]storage.Option, error) {
	options := make([]storage.Option, 0, len(in))
	used := make(map[string]struct{}, len(in))
	for _, o := range in {
		id := o.ID
		if _, taken := used[id]; !keepIDs || id == "" || taken {
			generated, err := gonanoid.Generate(optionIDAlphabet, optionIDLength)
			if err != nil {
				logging.Log.Errorf("POLL: failed to generate option id: %v", err)
				return nil, err
			}
			id = generated
		}
		used[id] = struct{}{}
		options = append(options, storage.Option{
			ID:          id,
			Text:        o.Text,
			Description: o.Description,
			ImageURL:    o.ImageURL,
		})
	}
	return options, nil
}
