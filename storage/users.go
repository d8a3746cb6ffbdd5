package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type UserStorage interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Create fails with ErrItemAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id string, role Role, now time.Time) (*User, error)
}

// DynamoUserStorage keeps one item per user plus an "EMAIL#<email>" guard item
// in the same table. Both are written in one transaction so emails stay unique.
type DynamoUserStorage struct {
	Client    *dynamodb.Client
	TableName string
}

type emailGuard struct {
	PK     string `dynamodbav:"PK"`
	UserID string `dynamodbav:"UserID"`
}

func emailKey(email string) string {
	return "EMAIL#" + strings.ToLower(email)
}

func (s *DynamoUserStorage) Get(ctx context.Context, id string) (*User, error) {
	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		logging.Log.Errorf("USER: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *DynamoUserStorage) GetByEmail(ctx context.Context, email string) (*User, error) {
	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: emailKey(email)},
		},
	})
	if err != nil {
		logging.Log.Errorf("USER: email lookup failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrItemNotFound
	}

	var guard emailGuard
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal email guard: %v", err)
		return nil, err
	}
	return s.Get(ctx, guard.UserID)
}

func (s *DynamoUserStorage) Create(ctx context.Context, user *User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal user: %v", err)
		return err
	}
	guard, err := attributevalue.MarshalMap(emailGuard{PK: emailKey(user.Email), UserID: user.ID})
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           &s.TableName,
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName:           &s.TableName,
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			logging.Log.Warnf("USER: email %s already registered", user.Email)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) UpdateRole(ctx context.Context, id string, role Role, now time.Time) (*User, error) {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, err
	}

	out, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &s.TableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         aws.String("SET #role = :role, UpdatedAt = :updatedAt"),
		ConditionExpression:      aws.String("attribute_exists(PK) AND attribute_exists(Email)"),
		ExpressionAttributeNames: map[string]string{"#role": "Role"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role":      &types.AttributeValueMemberS{Value: string(role)},
			":updatedAt": updatedAt,
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return nil, ErrItemNotFound
		}
		logging.Log.Errorf("USER: failed to update role of %s: %v", id, err)
		return nil, err
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Attributes, &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	logging.Log.Infof("USER: role of %s set to %s", id, role)
	return &user, nil
}
