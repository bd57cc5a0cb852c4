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

// EventRepository defines the interface for event data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListUpcoming(ctx context.Context, skip, limit int64) ([]models.Event, int64, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	SetRSVP(ctx context.Context, id, userID primitive.ObjectID, status string) error
	ClearRSVP(ctx context.Context, id, userID primitive.ObjectID) error
}

// MongoEventRepository implements EventRepository for MongoDB
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoEventRepository
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection("events")}
}

// EnsureIndexes creates the date and organizer indexes.
func (r *MongoEventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "organizer", Value: 1}}},
	})
	return err
}

// CreateEvent inserts a new event.
func (r *MongoEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	if event.Going == nil {
		event.Going = []primitive.ObjectID{}
	}
	if event.Interested == nil {
		event.Interested = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// GetEventByID retrieves an event by ObjectID.
func (r *MongoEventRepository) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListUpcoming returns one page of future events, soonest first.
func (r *MongoEventRepository) ListUpcoming(ctx context.Context, skip, limit int64) ([]models.Event, int64, error) {
	filter := bson.M{"date": bson.M{"$gte": time.Now()}}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// UpdateEvent applies a partial $set update.
func (r *MongoEventRepository) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event document.
func (r *MongoEventRepository) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SetRSVP puts the user in exactly one of the going/interested sets.
func (r *MongoEventRepository) SetRSVP(ctx context.Context, id, userID primitive.ObjectID, status string) error {
	target, other := "going", "interested"
	if status == models.RSVPInterested {
		target, other = other, target
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{target: userID},
		"$pull":     bson.M{other: userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ClearRSVP removes the user from both sets.
func (r *MongoEventRepository) ClearRSVP(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"going": userID, "interested": userID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}
