package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type VoteStorage interface {
	Exists(ctx context.Context, pollID, voterID string) (bool, error)
	// Cast records the vote and increments the poll counters of every selected
	// option as one unit. It fails with ErrVoteAlreadyExists when the voter
	// already voted on the poll, and with ErrConditionFailed when the poll is no
	// longer in progress.
	Cast(ctx context.Context, poll *Poll, vote *Vote) error
}

// DynamoVoteStorage keys votes by PK=poll id and SK=voter id, which makes the
// (poll, voter) pair unique regardless of the poll's soft delete flag.
type DynamoVoteStorage struct {
	Client         *dynamodb.Client
	TableName      string
	PollsTableName string
}

func (s *DynamoVoteStorage) Exists(ctx context.Context, pollID, voterID string) (bool, error) {
	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pollID},
			"SK": &types.AttributeValueMemberS{Value: voterID},
		},
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		logging.Log.Errorf("VOTE: lookup for poll %s voter %s failed: %v", pollID, voterID, err)
		return false, err
	}
	return out.Item != nil, nil
}

func (s *DynamoVoteStorage) Cast(ctx context.Context, poll *Poll, vote *Vote) error {
	item, err := attributevalue.MarshalMap(vote)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
		return err
	}
	updatedAt, err := attributevalue.Marshal(vote.CreatedAt)
	if err != nil {
		return err
	}

	counter := "NormalVotes"
	if vote.IsExpertVote {
		counter = "ExpertVotes"
	}

	names := map[string]string{
		"#status":  "Status",
		"#opts":    "Options",
		"#id":      "ID",
		"#counter": counter,
	}
	values := map[string]types.AttributeValue{
		":inProgress": &types.AttributeValueMemberS{Value: string(PollStatusInProgress)},
		":false":      &types.AttributeValueMemberBOOL{Value: false},
		":one":        &types.AttributeValueMemberN{Value: "1"},
		":updatedAt":  updatedAt,
	}
	set := []string{"UpdatedAt = :updatedAt"}
	conditions := []string{"attribute_exists(PK)", "#status = :inProgress", "IsDeleted = :false"}

	for i, optionID := range vote.SelectedOptions {
		idx := poll.OptionIndex(optionID)
		if idx < 0 {
			return fmt.Errorf("option %s is not part of poll %s", optionID, poll.ID)
		}
		path := fmt.Sprintf("#opts[%d].#counter", idx)
		placeholder := fmt.Sprintf(":opt%d", i)
		set = append(set, fmt.Sprintf("%s = %s + :one", path, path))
		// The list position must still hold the same option.
		conditions = append(conditions, fmt.Sprintf("#opts[%d].#id = %s", idx, placeholder))
		values[placeholder] = &types.AttributeValueMemberS{Value: optionID}
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &s.TableName,
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName: &s.PollsTableName,
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: poll.ID},
					},
					UpdateExpression:          aws.String("SET " + strings.Join(set, ", ")),
					ConditionExpression:       aws.String(strings.Join(conditions, " AND ")),
					ExpressionAttributeNames:  names,
					ExpressionAttributeValues: values,
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
					continue
				}
				if i == 0 {
					logging.Log.Warnf("VOTE: voter %s already voted on poll %s", vote.VoterID, vote.PollID)
					return ErrVoteAlreadyExists
				}
				logging.Log.Warnf("VOTE: poll %s no longer accepts votes", vote.PollID)
				return ErrConditionFailed
			}
		}
		logging.Log.Errorf("VOTE: failed to cast vote: %v", err)
		return err
	}
	return nil
}
