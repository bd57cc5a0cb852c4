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

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error)
	MarkConversationRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error)
	GetConversationPartners(ctx context.Context, user primitive.ObjectID, limit int64) ([]primitive.ObjectID, error)
	GetLastMessage(ctx context.Context, a, b primitive.ObjectID) (*models.Message, error)
	CountUnread(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

// EnsureIndexes creates the conversation and unread lookups.
func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "isRead", Value: 1}}},
	})
	return err
}

// CreateMessage inserts a new message document.
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func conversationFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
}

// GetConversation returns one page of the two users' messages in insertion
// order (the newest page is fetched first; each page is oldest-first).
func (r *MongoMessageRepository) GetConversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, int64, error) {
	filter := conversationFilter(a, b)
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	// reverse into chronological order within the page
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

// MarkConversationRead marks every unread message from sender to receiver as
// read, returning how many were touched.
func (r *MongoMessageRepository) MarkConversationRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	now := time.Now()
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"sender": sender, "receiver": receiver, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// GetConversationPartners returns the distinct users the given user has
// exchanged messages with, most recent conversation first.
func (r *MongoMessageRepository) GetConversationPartners(ctx context.Context, user primitive.ObjectID, limit int64) ([]primitive.ObjectID, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"sender": user},
			bson.M{"receiver": user},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"partner": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender", user}}, "$receiver", "$sender",
			}},
			"createdAt": 1,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$partner",
			"lastAt":   bson.M{"$first": "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	partners := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		partners[i] = row.ID
	}
	return partners, nil
}

// GetLastMessage returns the most recent message between two users.
func (r *MongoMessageRepository) GetLastMessage(ctx context.Context, a, b primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.collection.FindOne(ctx, conversationFilter(a, b),
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts unread messages from sender to receiver.
func (r *MongoMessageRepository) CountUnread(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"sender": sender, "receiver": receiver, "isRead": false})
}
