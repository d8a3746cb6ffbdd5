package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MongoCollectionPolls = "polls"
	MongoCollectionVotes = "votes"
	MongoCollectionUsers = "users"
)

// EnsureMongoIndexes creates the unique (poll, voter) and email indexes plus
// the indexes used by the status sweep.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		MongoCollectionVotes: {{
			Keys:    bson.D{{Key: "pollId", Value: 1}, {Key: "voterId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		MongoCollectionUsers: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		MongoCollectionPolls: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "creator", Value: 1}}},
			{Keys: bson.D{{Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			logging.Log.Errorf("MONGO: failed to create indexes on %s: %v", collection, err)
			return err
		}
	}
	return nil
}

type MongoPollStorage struct {
	Collection *mongo.Collection
}

func (s *MongoPollStorage) Get(ctx context.Context, id string) (*Poll, error) {
	var poll Poll
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&poll); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		logging.Log.Errorf("POLL: find %s failed: %v", id, err)
		return nil, err
	}
	return &poll, nil
}

func (s *MongoPollStorage) GetAll(ctx context.Context, filter PollFilter) ([]*Poll, error) {
	query := bson.M{"isDeleted": false}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ExpertOnly {
		query["expertVoters.0"] = bson.M{"$exists": true}
	}

	cursor, err := s.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		logging.Log.Errorf("POLL: find failed: %v", err)
		return nil, err
	}
	polls := make([]*Poll, 0)
	if err := cursor.All(ctx, &polls); err != nil {
		logging.Log.Errorf("POLL: failed to decode poll list: %v", err)
		return nil, err
	}
	return polls, nil
}

func (s *MongoPollStorage) Create(ctx context.Context, poll *Poll) error {
	if _, err := s.Collection.InsertOne(ctx, poll); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("POLL: failed to create poll: %v", err)
		return err
	}
	return nil
}

func (s *MongoPollStorage) Replace(ctx context.Context, poll *Poll) error {
	filter := bson.M{"_id": poll.ID, "status": PollStatusNotStarted, "isDeleted": false}
	res, err := s.Collection.ReplaceOne(ctx, filter, poll)
	if err != nil {
		logging.Log.Errorf("POLL: failed to replace poll: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		logging.Log.Warnf("POLL: replace of %s rejected, poll started or deleted", poll.ID)
		return ErrConditionFailed
	}
	return nil
}

func (s *MongoPollStorage) UpdateDetails(ctx context.Context, id string, details PollDetails, now time.Time) (*Poll, error) {
	set := bson.M{"updatedAt": now.UTC()}
	if details.Description != nil {
		set["description"] = *details.Description
	}
	if details.Banner != nil {
		set["banner"] = *details.Banner
	}

	var poll Poll
	err := s.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&poll)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		logging.Log.Errorf("POLL: failed to update details of %s: %v", id, err)
		return nil, err
	}
	return &poll, nil
}

func (s *MongoPollStorage) Close(ctx context.Context, id string, now time.Time) error {
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false, "status": bson.M{"$ne": PollStatusEnded}},
		bson.M{"$set": bson.M{"status": PollStatusEnded, "endTime": now.UTC(), "updatedAt": now.UTC()}},
	)
	if err != nil {
		logging.Log.Errorf("POLL: failed to close poll %s: %v", id, err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConditionFailed
	}
	logging.Log.Infof("POLL: closed poll %s", id)
	return nil
}

func (s *MongoPollStorage) SoftDelete(ctx context.Context, id string, now time.Time) error {
	res, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": now.UTC()}},
	)
	if err != nil {
		logging.Log.Errorf("POLL: failed to delete poll %s: %v", id, err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConditionFailed
	}
	logging.Log.Infof("POLL: soft deleted poll %s", id)
	return nil
}

func (s *MongoPollStorage) StartDue(ctx context.Context, now time.Time) (int, error) {
	res, err := s.Collection.UpdateMany(ctx,
		bson.M{
			"status":    PollStatusNotStarted,
			"isDeleted": false,
			"startTime": bson.M{"$lte": now},
			"endTime":   bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"status": PollStatusInProgress}},
	)
	if err != nil {
		logging.Log.Errorf("POLL: start sweep failed: %v", err)
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoPollStorage) EndDue(ctx context.Context, now time.Time) (int, error) {
	res, err := s.Collection.UpdateMany(ctx,
		bson.M{
			"status":    bson.M{"$in": []PollStatus{PollStatusNotStarted, PollStatusInProgress}},
			"isDeleted": false,
			"endTime":   bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": PollStatusEnded}},
	)
	if err != nil {
		logging.Log.Errorf("POLL: end sweep failed: %v", err)
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

// MongoVoteStorage needs a replica set: Cast runs inside a multi document
// transaction.
type MongoVoteStorage struct {
	Client *mongo.Client
	Votes  *mongo.Collection
	Polls  *mongo.Collection
}

func (s *MongoVoteStorage) Exists(ctx context.Context, pollID, voterID string) (bool, error) {
	count, err := s.Votes.CountDocuments(ctx, bson.M{"pollId": pollID, "voterId": voterID}, options.Count().SetLimit(1))
	if err != nil {
		logging.Log.Errorf("VOTE: lookup for poll %s voter %s failed: %v", pollID, voterID, err)
		return false, err
	}
	return count > 0, nil
}

func (s *MongoVoteStorage) Cast(ctx context.Context, poll *Poll, vote *Vote) error {
	counter := "normalVotes"
	if vote.IsExpertVote {
		counter = "expertVotes"
	}
	inc := bson.M{}
	filters := make([]interface{}, 0, len(vote.SelectedOptions))
	for i, optionID := range vote.SelectedOptions {
		name := fmt.Sprintf("o%d", i)
		inc[fmt.Sprintf("options.$[%s].%s", name, counter)] = 1
		filters = append(filters, bson.M{name + ".id": optionID})
	}

	session, err := s.Client.StartSession()
	if err != nil {
		logging.Log.Errorf("VOTE: failed to start session: %v", err)
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.Votes.InsertOne(sc, vote); err != nil {
			return nil, err
		}
		res, err := s.Polls.UpdateOne(sc,
			bson.M{"_id": poll.ID, "status": PollStatusInProgress, "isDeleted": false},
			bson.M{"$inc": inc, "$set": bson.M{"updatedAt": vote.CreatedAt}},
			options.Update().SetArrayFilters(options.ArrayFilters{Filters: filters}),
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrConditionFailed
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logging.Log.Warnf("VOTE: voter %s already voted on poll %s", vote.VoterID, vote.PollID)
			return ErrVoteAlreadyExists
		}
		if errors.Is(err, ErrConditionFailed) {
			logging.Log.Warnf("VOTE: poll %s no longer accepts votes", vote.PollID)
			return ErrConditionFailed
		}
		logging.Log.Errorf("VOTE: failed to cast vote: %v", err)
		return err
	}
	return nil
}

type MongoUserStorage struct {
	Collection *mongo.Collection
}

func (s *MongoUserStorage) Get(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStorage) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoUserStorage) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	if err := s.Collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		logging.Log.Errorf("USER: find failed: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStorage) Create(ctx context.Context, user *User) error {
	if _, err := s.Collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logging.Log.Warnf("USER: email %s already registered", user.Email)
			return ErrItemAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

func (s *MongoUserStorage) UpdateRole(ctx context.Context, id string, role Role, now time.Time) (*User, error) {
	var user User
	err := s.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": now.UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		logging.Log.Errorf("USER: failed to update role of %s: %v", id, err)
		return nil, err
	}
	logging.Log.Infof("USER: role of %s set to %s", id, role)
	return &user, nil
}
