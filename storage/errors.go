package storage

import "errors"

var ErrItemNotFound = errors.New("item not found in storage")
var ErrItemAlreadyExists = errors.New("item already exists")
var ErrVoteAlreadyExists = errors.New("vote already exists for poll and voter")
var ErrConditionFailed = errors.New("storage condition not met")
var ErrSessionNotFound = errors.New("session not found or expired")
