package storage

import "time"

type PollStatus string

const (
	PollStatusNotStarted PollStatus = "not_started"
	PollStatusInProgress PollStatus = "in_progress"
	PollStatusEnded      PollStatus = "ended"
)

type PollType string

const (
	PollTypeSingle   PollType = "single"
	PollTypeMultiple PollType = "multiple"
)

type Role string

const (
	RoleNormal     Role = "normal"
	RoleExpert     Role = "expert"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type Option struct {
	ID          string `dynamodbav:"ID" bson:"id" json:"id"`
	Text        string `dynamodbav:"Text" bson:"text" json:"text"`
	Description string `dynamodbav:"Description,omitempty" bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string `dynamodbav:"ImageURL,omitempty" bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	NormalVotes int    `dynamodbav:"NormalVotes" bson:"normalVotes" json:"normalVotes"`
	ExpertVotes int    `dynamodbav:"ExpertVotes" bson:"expertVotes" json:"expertVotes"`
}

// Poll embeds its options. Start and end times are stored as unix seconds in
// DynamoDB so the status sweep can compare them in filter expressions.
type Poll struct {
	ID           string     `dynamodbav:"PK" bson:"_id" json:"id"`
	Title        string     `dynamodbav:"Title" bson:"title" json:"title"`
	Description  string     `dynamodbav:"Description" bson:"description" json:"description"`
	Type         PollType   `dynamodbav:"Type" bson:"type" json:"type"`
	Options      []Option   `dynamodbav:"Options" bson:"options" json:"options"`
	CreatorID    string     `dynamodbav:"CreatorID" bson:"creator" json:"creatorId"`
	ExpertVoters []string   `dynamodbav:"ExpertVoters" bson:"expertVoters" json:"expertVoters"`
	StartTime    time.Time  `dynamodbav:"StartTime,unixtime" bson:"startTime" json:"startTime"`
	EndTime      time.Time  `dynamodbav:"EndTime,unixtime" bson:"endTime" json:"endTime"`
	Status       PollStatus `dynamodbav:"Status" bson:"status" json:"status"`
	MaxChoices   *int       `dynamodbav:"MaxChoices,omitempty" bson:"maxChoices,omitempty" json:"maxChoices,omitempty"`
	ExpertWeight float64    `dynamodbav:"ExpertWeight" bson:"expertWeight" json:"expertWeight"`
	IsDeleted    bool       `dynamodbav:"IsDeleted" bson:"isDeleted" json:"isDeleted"`
	Banner       string     `dynamodbav:"Banner,omitempty" bson:"banner,omitempty" json:"banner,omitempty"`
	CreatedAt    time.Time  `dynamodbav:"CreatedAt" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `dynamodbav:"UpdatedAt" bson:"updatedAt" json:"updatedAt"`
}

// OptionIndex returns the position of the option with the given id, or -1.
func (p *Poll) OptionIndex(optionID string) int {
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

// IsExpertVoter reports whether userID is one of the poll's designated experts.
func (p *Poll) IsExpertVoter(userID string) bool {
	for _, id := range p.ExpertVoters {
		if id == userID {
			return true
		}
	}
	return false
}

type Vote struct {
	PollID          string    `dynamodbav:"PK" bson:"pollId" json:"pollId"`
	VoterID         string    `dynamodbav:"SK" bson:"voterId" json:"voterId"`
	ID              string    `dynamodbav:"ID" bson:"_id" json:"id"`
	SelectedOptions []string  `dynamodbav:"SelectedOptions" bson:"selectedOptions" json:"selectedOptions"`
	IsExpertVote    bool      `dynamodbav:"IsExpertVote" bson:"isExpertVote" json:"isExpertVote"`
	CreatedAt       time.Time `dynamodbav:"CreatedAt" bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID           string    `dynamodbav:"PK" bson:"_id" json:"id"`
	Email        string    `dynamodbav:"Email" bson:"email" json:"email"`
	Username     string    `dynamodbav:"Username" bson:"username" json:"username"`
	PasswordHash string    `dynamodbav:"PasswordHash" bson:"passwordHash" json:"-"`
	Role         Role      `dynamodbav:"Role" bson:"role" json:"role"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `dynamodbav:"UpdatedAt" bson:"updatedAt" json:"updatedAt"`
}

// Session is the cached view of an authenticated user.
type Session struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"exp"`
}

// PollFilter narrows GetAll. Deleted polls are always excluded.
type PollFilter struct {
	Status     PollStatus
	ExpertOnly bool
}

// PollDetails carries the fields that stay editable after a poll has started.
type PollDetails struct {
	Description *string
	Banner      *string
}
