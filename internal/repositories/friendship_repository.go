package repositories

import (
	"context"
	"time"

	"github.com/arafatr/linkup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRequestRepository defines the interface for friend request operations
type FriendRequestRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error)
	GetPendingForReceiver(ctx context.Context, receiver primitive.ObjectID, limit int64) ([]models.FriendRequest, error)
	GetPendingBySender(ctx context.Context, sender primitive.ObjectID, limit int64) ([]models.FriendRequest, error)
	PendingCounterparts(ctx context.Context, user primitive.ObjectID) ([]primitive.ObjectID, error)
	Respond(ctx context.Context, id primitive.ObjectID, status string) (*models.FriendRequest, error)
	DeleteBetween(ctx context.Context, a, b primitive.ObjectID) error
}

// MongoFriendRequestRepository implements FriendRequestRepository for MongoDB
type MongoFriendRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoFriendRequestRepository creates a new MongoFriendRequestRepository
func NewMongoFriendRequestRepository(db *mongo.Database) *MongoFriendRequestRepository {
	return &MongoFriendRequestRepository{collection: db.Collection("friendrequests")}
}

// EnsureIndexes creates the unique (sender, receiver) index that blocks
// duplicate requests in one direction, plus the status lookups.
func (r *MongoFriendRequestRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

// CreateRequest inserts a pending request. ErrDuplicate surfaces the unique
// index violation.
func (r *MongoFriendRequestRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	req.ID = primitive.NewObjectID()
	req.Status = models.FriendRequestPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	_, err := r.collection.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetRequestByID retrieves a request by ObjectID.
func (r *MongoFriendRequestRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindPendingBetween looks for a pending request in either direction.
func (r *MongoFriendRequestRepository) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	filter := bson.M{
		"status": models.FriendRequestPending,
		"$or": bson.A{
			bson.M{"sender": a, "receiver": b},
			bson.M{"sender": b, "receiver": a},
		},
	}
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetPendingForReceiver returns incoming pending requests, newest first.
func (r *MongoFriendRequestRepository) GetPendingForReceiver(ctx context.Context, receiver primitive.ObjectID, limit int64) ([]models.FriendRequest, error) {
	return r.findPending(ctx, bson.M{"receiver": receiver, "status": models.FriendRequestPending}, limit)
}

// GetPendingBySender returns outgoing pending requests, newest first.
func (r *MongoFriendRequestRepository) GetPendingBySender(ctx context.Context, sender primitive.ObjectID, limit int64) ([]models.FriendRequest, error) {
	return r.findPending(ctx, bson.M{"sender": sender, "status": models.FriendRequestPending}, limit)
}

func (r *MongoFriendRequestRepository) findPending(ctx context.Context, filter bson.M, limit int64) ([]models.FriendRequest, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// PendingCounterparts returns the other side of every pending request the
// user participates in, used to filter friend suggestions.
func (r *MongoFriendRequestRepository) PendingCounterparts(ctx context.Context, user primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"status": models.FriendRequestPending,
		"$or":    bson.A{bson.M{"sender": user}, bson.M{"receiver": user}},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	others := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		if req.Sender == user {
			others = append(others, req.Receiver)
		} else {
			others = append(others, req.Sender)
		}
	}
	return others, nil
}

// Respond transitions a request out of pending exactly once. A replayed call
// finds no pending document and reports ErrAlreadyHandled; an unknown id
// reports ErrFriendRequestNotFound.
func (r *MongoFriendRequestRepository) Respond(ctx context.Context, id primitive.ObjectID, status string) (*models.FriendRequest, error) {
	now := time.Now()
	var req models.FriendRequest
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.FriendRequestPending},
		bson.M{"$set": bson.M{"status": status, "respondedAt": now, "updatedAt": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// distinguish a handled request from a missing one
			if _, lookupErr := r.GetRequestByID(ctx, id); lookupErr == nil {
				return nil, ErrAlreadyHandled
			}
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// DeleteBetween removes every request document between two users, in both
// directions. Unfriending uses this so the unique index lets a later request
// through.
func (r *MongoFriendRequestRepository) DeleteBetween(ctx context.Context, a, b primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}})
	return err
}
