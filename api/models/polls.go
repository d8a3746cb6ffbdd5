package models

import (
	"time"

	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
)

type OptionRequest struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text" binding:"required"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type CreatePollRequest struct {
	Title        string           `json:"title" binding:"required"`
	Description  string           `json:"description" binding:"required"`
	Type         storage.PollType `json:"type" binding:"required"`
	Options      []OptionRequest  `json:"options" binding:"required,dive"`
	ExpertVoters []string         `json:"expertVoters"`
	StartTime    time.Time        `json:"startTime" binding:"required"`
	EndTime      time.Time        `json:"endTime" binding:"required"`
	MaxChoices   *int             `json:"maxChoices,omitempty"`
	ExpertWeight *float64         `json:"expertWeight,omitempty"`
	Banner       string           `json:"banner,omitempty"`
}

// UpdatePollRequest only carries the fields to change.
type UpdatePollRequest struct {
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Type         *storage.PollType `json:"type,omitempty"`
	Options      *[]OptionRequest  `json:"options,omitempty"`
	ExpertVoters *[]string         `json:"expertVoters,omitempty"`
	StartTime    *time.Time        `json:"startTime,omitempty"`
	EndTime      *time.Time        `json:"endTime,omitempty"`
	MaxChoices   *int              `json:"maxChoices,omitempty"`
	ExpertWeight *float64          `json:"expertWeight,omitempty"`
	Banner       *string           `json:"banner,omitempty"`
}

type PollSummaryResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Status       string    `json:"status"`
	TotalVotes   int       `json:"totalVotes"`
	IsExpertVote bool      `json:"isExpertVote"`
}

type OptionResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

type PollDetailResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Type         storage.PollType `json:"type"`
	Options      []OptionResponse `json:"options"`
	StartTime    time.Time        `json:"startTime"`
	EndTime      time.Time        `json:"endTime"`
	Status       string           `json:"status"`
	TotalVotes   int              `json:"totalVotes"`
	IsExpertVote bool             `json:"isExpertVote"`
	HasVoted     bool             `json:"hasVoted"`
	Creator      string           `json:"creator"`
	ExpertVoters []string         `json:"expertVoters"`
	MaxChoices   *int             `json:"maxChoices,omitempty"`
	ExpertWeight float64          `json:"expertWeight"`
	Banner       string           `json:"banner,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func TransformPollInput(req *CreatePollRequest) voting.PollInput {
	return voting.PollInput{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Options:      transformOptions(req.Options),
		ExpertVoters: req.ExpertVoters,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxChoices:   req.MaxChoices,
		ExpertWeight: req.ExpertWeight,
		Banner:       req.Banner,
	}
}

func TransformPollUpdate(req *UpdatePollRequest) voting.PollUpdate {
	upd := voting.PollUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		ExpertVoters: req.ExpertVoters,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		MaxChoices:   req.MaxChoices,
		ExpertWeight: req.ExpertWeight,
		Banner:       req.Banner,
	}
	if req.Options != nil {
		options := transformOptions(*req.Options)
		upd.Options = &options
	}
	return upd
}

func transformOptions(in []OptionRequest) []voting.OptionInput {
	out := make([]voting.OptionInput, 0, len(in))
	for _, o := range in {
		out = append(out, voting.OptionInput{
			ID:          o.ID,
			Text:        o.Text,
			Description: o.Description,
			ImageURL:    o.ImageURL,
		})
	}
	return out
}

func TransformPollSummaryFromStorage(p *storage.Poll) PollSummaryResponse {
	tally := voting.ComputeTally(p.Options, p.ExpertWeight)
	return PollSummaryResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Status:       voting.DisplayStatus(p.Status),
		TotalVotes:   tally.TotalVotes,
		IsExpertVote: len(p.ExpertVoters) > 0,
	}
}

func TransformPollDetailFromStorage(p *storage.Poll, hasVoted bool) PollDetailResponse {
	tally := voting.ComputeTally(p.Options, p.ExpertWeight)

	options := make([]OptionResponse, len(p.Options))
	for i, o := range p.Options {
		options[i] = OptionResponse{
			ID:          o.ID,
			Text:        o.Text,
			Description: o.Description,
			ImageURL:    o.ImageURL,
			Votes:       tally.Options[i].Votes,
			Percentage:  tally.Options[i].Percentage,
		}
	}

	expertVoters := p.ExpertVoters
	if expertVoters == nil {
		expertVoters = []string{}
	}

	return PollDetailResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Type:         p.Type,
		Options:      options,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Status:       voting.DisplayStatus(p.Status),
		TotalVotes:   tally.TotalVotes,
		IsExpertVote: len(p.ExpertVoters) > 0,
		HasVoted:     hasVoted,
		Creator:      p.CreatorID,
		ExpertVoters: expertVoters,
		MaxChoices:   p.MaxChoices,
		ExpertWeight: p.ExpertWeight,
		Banner:       p.Banner,
	}
}
