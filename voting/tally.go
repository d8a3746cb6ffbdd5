package voting

import "github.com/alex-pricope/online-voting-system/storage"

type OptionTally struct {
	OptionID   string
	Votes      int
	Weighted   float64
	Percentage float64
}

type Tally struct {
	Options       []OptionTally
	TotalVotes    int
	TotalWeighted float64
}

// ComputeTally derives display values from the persisted option counters.
// Expert votes count expertWeight times toward the percentage but once toward
// the raw vote count. With no weighted votes every percentage is 0.
func ComputeTally(options []storage.Option, expertWeight float64) Tally {
	t := Tally{Options: make([]OptionTally, len(options))}

	for i, o := range options {
		weighted := float64(o.NormalVotes) + float64(o.ExpertVotes)*expertWeight
		t.Options[i] = OptionTally{
			OptionID: o.ID,
			Votes:    o.NormalVotes + o.ExpertVotes,
			Weighted: weighted,
		}
		t.TotalVotes += t.Options[i].Votes
		t.TotalWeighted += weighted
	}

	denominator := t.TotalWeighted
	if denominator == 0 {
		denominator = 1
	}
	for i := range t.Options {
		t.Options[i].Percentage = t.Options[i].Weighted / denominator * 100
	}
	return t
}
