package storage

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type PollStorage interface {
	Get(ctx context.Context, id string) (*Poll, error)
	GetAll(ctx context.Context, filter PollFilter) ([]*Poll, error)
	Create(ctx context.Context, poll *Poll) error
	// Replace overwrites a poll that is still not started and not deleted.
	Replace(ctx context.Context, poll *Poll) error
	UpdateDetails(ctx context.Context, id string, details PollDetails, now time.Time) (*Poll, error)
	Close(ctx context.Context, id string, now time.Time) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	// StartDue moves not started polls whose window contains now to in progress.
	StartDue(ctx context.Context, now time.Time) (int, error)
	// EndDue moves not started or in progress polls whose end time passed to ended.
	EndDue(ctx context.Context, now time.Time) (int, error)
}

type DynamoPollStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoPollStorage) Get(ctx context.Context, id string) (*Poll, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("POLL: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("POLL: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var poll Poll
	if err := attributevalue.UnmarshalMap(out.Item, &poll); err != nil {
		logging.Log.Errorf("POLL: failed to unmarshal poll: %v", err)
		return nil, err
	}
	return &poll, nil
}

func (s *DynamoPollStorage) GetAll(ctx context.Context, filter PollFilter) ([]*Poll, error) {
	expr := []string{"IsDeleted = :false"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":false": &types.AttributeValueMemberBOOL{Value: false},
	}
	if filter.Status != "" {
		expr = append(expr, "#status = :status")
		names["#status"] = "Status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(filter.Status)}
	}
	if filter.ExpertOnly {
		expr = append(expr, "size(ExpertVoters) > :zero")
		values[":zero"] = &types.AttributeValueMemberN{Value: "0"}
	}

	items, err := s.scan(ctx, strings.Join(expr, " AND "), names, values, "")
	if err != nil {
		logging.Log.Errorf("POLL: scan failed: %v", err)
		return nil, err
	}

	polls := make([]*Poll, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &polls); err != nil {
		logging.Log.Errorf("POLL: failed to unmarshal poll list: %v", err)
		return nil, err
	}

	// Newest first
	sort.SliceStable(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

func (s *DynamoPollStorage) Create(ctx context.Context, poll *Poll) error {
	item, err := attributevalue.MarshalMap(poll)
	if err != nil {
		logging.Log.Errorf("POLL: failed to marshal poll: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("POLL: item with ID %s already exists", poll.ID)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("POLL: failed to create poll: %v", err)
		return err
	}
	return nil
}

func (s *DynamoPollStorage) Replace(ctx context.Context, poll *Poll) error {
	item, err := attributevalue.MarshalMap(poll)
	if err != nil {
		logging.Log.Errorf("POLL: failed to marshal updated poll: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                &s.TableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(PK) AND #status = :notStarted AND IsDeleted = :false"),
		ExpressionAttributeNames: map[string]string{"#status": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":notStarted": &types.AttributeValueMemberS{Value: string(PollStatusNotStarted)},
			":false":      &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("POLL: replace of %s rejected, poll started or deleted", poll.ID)
			return ErrConditionFailed
		}
		logging.Log.Errorf("POLL: failed to replace poll: %v", err)
		return err
	}
	return nil
}

func (s *DynamoPollStorage) UpdateDetails(ctx context.Context, id string, details PollDetails, now time.Time) (*Poll, error) {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, err
	}

	set := []string{"UpdatedAt = :updatedAt"}
	values := map[string]types.AttributeValue{
		":updatedAt": updatedAt,
		":false":     &types.AttributeValueMemberBOOL{Value: false},
	}
	if details.Description != nil {
		set = append(set, "Description = :description")
		values[":description"] = &types.AttributeValueMemberS{Value: *details.Description}
	}
	if details.Banner != nil {
		set = append(set, "Banner = :banner")
		values[":banner"] = &types.AttributeValueMemberS{Value: *details.Banner}
	}

	out, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(set, ", ")),
		ConditionExpression:       aws.String("attribute_exists(PK) AND IsDeleted = :false"),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return nil, ErrConditionFailed
		}
		logging.Log.Errorf("POLL: failed to update details of %s: %v", id, err)
		return nil, err
	}

	var poll Poll
	if err := attributevalue.UnmarshalMap(out.Attributes, &poll); err != nil {
		logging.Log.Errorf("POLL: failed to unmarshal updated poll: %v", err)
		return nil, err
	}
	return &poll, nil
}

func (s *DynamoPollStorage) Close(ctx context.Context, id string, now time.Time) error {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         aws.String("SET #status = :ended, EndTime = :now, UpdatedAt = :updatedAt"),
		ConditionExpression:      aws.String("attribute_exists(PK) AND IsDeleted = :false AND #status <> :ended"),
		ExpressionAttributeNames: map[string]string{"#status": "Status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ended":     &types.AttributeValueMemberS{Value: string(PollStatusEnded)},
			":now":       unixSeconds(now),
			":updatedAt": updatedAt,
			":false":     &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrConditionFailed
		}
		logging.Log.Errorf("POLL: failed to close poll %s: %v", id, err)
		return err
	}
	logging.Log.Infof("POLL: closed poll %s", id)
	return nil
}

func (s *DynamoPollStorage) SoftDelete(ctx context.Context, id string, now time.Time) error {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET IsDeleted = :true, UpdatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_exists(PK) AND IsDeleted = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":      &types.AttributeValueMemberBOOL{Value: true},
			":false":     &types.AttributeValueMemberBOOL{Value: false},
			":updatedAt": updatedAt,
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrConditionFailed
		}
		logging.Log.Errorf("POLL: failed to delete poll %s: %v", id, err)
		return err
	}
	logging.Log.Infof("POLL: soft deleted poll %s", id)
	return nil
}

func (s *DynamoPollStorage) StartDue(ctx context.Context, now time.Time) (int, error) {
	condition := "#status = :notStarted AND IsDeleted = :false AND StartTime <= :now AND EndTime > :now"
	values := map[string]types.AttributeValue{
		":notStarted": &types.AttributeValueMemberS{Value: string(PollStatusNotStarted)},
		":false":      &types.AttributeValueMemberBOOL{Value: false},
		":now":        unixSeconds(now),
	}
	return s.sweep(ctx, condition, values, PollStatusInProgress)
}

func (s *DynamoPollStorage) EndDue(ctx context.Context, now time.Time) (int, error) {
	condition := "(#status = :notStarted OR #status = :inProgress) AND IsDeleted = :false AND EndTime <= :now"
	values := map[string]types.AttributeValue{
		":notStarted": &types.AttributeValueMemberS{Value: string(PollStatusNotStarted)},
		":inProgress": &types.AttributeValueMemberS{Value: string(PollStatusInProgress)},
		":false":      &types.AttributeValueMemberBOOL{Value: false},
		":now":        unixSeconds(now),
	}
	return s.sweep(ctx, condition, values, PollStatusEnded)
}

// sweep finds the keys matching condition and re-applies the same condition on
// each update, so a poll changed between scan and update is left alone. A failure
// part way keeps the updates already applied; the next sweep picks up the rest.
func (s *DynamoPollStorage) sweep(ctx context.Context, condition string, values map[string]types.AttributeValue, target PollStatus) (int, error) {
	names := map[string]string{"#status": "Status"}
	keys, err := s.scan(ctx, condition, names, values, "PK")
	if err != nil {
		logging.Log.Errorf("POLL: sweep scan failed: %v", err)
		return 0, err
	}

	updateValues := make(map[string]types.AttributeValue, len(values)+1)
	for k, v := range values {
		updateValues[k] = v
	}
	updateValues[":target"] = &types.AttributeValueMemberS{Value: string(target)}

	var errs []error
	changed := 0
	for _, key := range keys {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 &s.TableName,
			Key:                       map[string]types.AttributeValue{"PK": key["PK"]},
			UpdateExpression:          aws.String("SET #status = :target"),
			ConditionExpression:       aws.String(condition),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: updateValues,
		})
		if err != nil {
			var cce *types.ConditionalCheckFailedException
			if errors.As(err, &cce) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		changed++
	}
	return changed, errors.Join(errs...)
}

func (s *DynamoPollStorage) scan(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue, projection string) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName:                 &s.TableName,
		FilterExpression:          aws.String(filter),
		ExpressionAttributeValues: values,
		ConsistentRead:            aws.Bool(true),
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if projection != "" {
		input.ProjectionExpression = aws.String(projection)
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

func unixSeconds(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}
}
