package voting

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alex-pricope/online-voting-system/storage"
)

const (
	MinOptions          = 2
	MaxOptions          = 10
	MaxTitleLength      = 100
	MaxDescriptionLen   = 500
	MaxOptionTextLength = 100
	MinExpertWeight     = 1.0
	MaxExpertWeight     = 10.0
	DefaultExpertWeight = 2.0
)

var bannerPattern = regexp.MustCompile(`^/uploads/.+`)

// ValidatePoll checks every invariant a stored poll must satisfy.
func ValidatePoll(p *storage.Poll) error {
	if err := validateText("title", p.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateText("description", p.Description, MaxDescriptionLen); err != nil {
		return err
	}
	if p.Type != storage.PollTypeSingle && p.Type != storage.PollTypeMultiple {
		return invalid("type", "must be %q or %q", storage.PollTypeSingle, storage.PollTypeMultiple)
	}

	if len(p.Options) < MinOptions || len(p.Options) > MaxOptions {
		return invalid("options", "a poll needs between %d and %d options", MinOptions, MaxOptions)
	}
	ids := make(map[string]struct{}, len(p.Options))
	for _, o := range p.Options {
		if o.ID == "" {
			return invalid("options", "option id is missing")
		}
		if _, dup := ids[o.ID]; dup {
			return invalid("options", "option id %s is used twice", o.ID)
		}
		ids[o.ID] = struct{}{}
		if err := validateText("options.text", o.Text, MaxOptionTextLength); err != nil {
			return err
		}
		if o.ImageURL != "" {
			if u, err := url.Parse(o.ImageURL); err != nil || !u.IsAbs() {
				return invalid("options.imageUrl", "must be an absolute URL")
			}
		}
	}

	if !p.EndTime.After(p.StartTime) {
		return invalid("endTime", "must be after startTime")
	}
	if p.ExpertWeight < MinExpertWeight || p.ExpertWeight > MaxExpertWeight {
		return invalid("expertWeight", "must be between %.0f and %.0f", MinExpertWeight, MaxExpertWeight)
	}

	if p.MaxChoices != nil {
		switch p.Type {
		case storage.PollTypeSingle:
			if *p.MaxChoices != 1 {
				return invalid("maxChoices", "a single choice poll allows exactly one option")
			}
		case storage.PollTypeMultiple:
			if *p.MaxChoices <= 1 || *p.MaxChoices > len(p.Options) {
				return invalid("maxChoices", "must be greater than 1 and at most the number of options")
			}
		}
	}

	for _, id := range p.ExpertVoters {
		if strings.TrimSpace(id) == "" {
			return invalid("expertVoters", "contains an empty user id")
		}
	}
	return ValidateBanner(p.Banner)
}

// ValidateDetails checks the fields editable after a poll started.
func ValidateDetails(d storage.PollDetails) error {
	if d.Description != nil {
		if err := validateText("description", *d.Description, MaxDescriptionLen); err != nil {
			return err
		}
	}
	if d.Banner != nil {
		return ValidateBanner(*d.Banner)
	}
	return nil
}

func ValidateBanner(banner string) error {
	if banner != "" && !bannerPattern.MatchString(banner) {
		return invalid("banner", "must be an uploaded file path")
	}
	return nil
}

func validateText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "must not be empty")
	}
	if utf8.RuneCountInString(value) > max {
		return invalid(field, "must be at most %d characters", max)
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
