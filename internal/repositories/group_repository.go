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

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	ListGroups(ctx context.Context, category, privacy string, skip, limit int64) ([]models.Group, int64, error)
	UpdateGroup(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
	AddMember(ctx context.Context, id primitive.ObjectID, member models.GroupMember) error
	RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error
	AddPendingRequest(ctx context.Context, id primitive.ObjectID, req models.JoinRequest) error
	RemovePendingRequest(ctx context.Context, id, userID primitive.ObjectID) error
	GetUserGroups(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error)
	SuggestGroups(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error)
}

// MongoGroupRepository implements GroupRepository for MongoDB
type MongoGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoGroupRepository creates a new MongoGroupRepository
func NewMongoGroupRepository(db *mongo.Database) *MongoGroupRepository {
	return &MongoGroupRepository{collection: db.Collection("groups")}
}

// EnsureIndexes creates the listing and membership indexes.
func (r *MongoGroupRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "privacy", Value: 1}}},
		{Keys: bson.D{{Key: "admin", Value: 1}}},
		{Keys: bson.D{{Key: "members.user", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	return err
}

// CreateGroup inserts a new group with the creator as admin and first member.
func (r *MongoGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	group.IsActive = true
	if group.Moderators == nil {
		group.Moderators = []primitive.ObjectID{}
	}
	if group.PendingRequests == nil {
		group.PendingRequests = []models.JoinRequest{}
	}
	_, err := r.collection.InsertOne(ctx, group)
	return err
}

// GetGroupByID retrieves a group by ObjectID.
func (r *MongoGroupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isActive": true}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	group.FillCounts()
	return &group, nil
}

// ListGroups returns one page of active groups filtered by category/privacy.
func (r *MongoGroupRepository) ListGroups(ctx context.Context, category, privacy string, skip, limit int64) ([]models.Group, int64, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = category
	}
	if privacy != "" {
		filter["privacy"] = privacy
	}

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

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, 0, err
	}
	for i := range groups {
		groups[i].FillCounts()
	}
	return groups, total, nil
}

// UpdateGroup applies a partial $set update.
func (r *MongoGroupRepository) UpdateGroup(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// DeleteGroup soft-deletes a group by clearing its active flag.
func (r *MongoGroupRepository) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateGroup(ctx, id, bson.M{"isActive": false})
}

// AddMember appends a member entry (caller checks for duplicates).
func (r *MongoGroupRepository) AddMember(ctx context.Context, id primitive.ObjectID, member models.GroupMember) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"members": member}})
	return err
}

// RemoveMember pulls a user out of the member list and the moderator set.
func (r *MongoGroupRepository) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{
		"members":    bson.M{"user": userID},
		"moderators": userID,
	}})
	return err
}

// AddPendingRequest appends a join request on a private group.
func (r *MongoGroupRepository) AddPendingRequest(ctx context.Context, id primitive.ObjectID, req models.JoinRequest) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"pendingRequests": req}})
	return err
}

// RemovePendingRequest drops a user's join request.
func (r *MongoGroupRepository) RemovePendingRequest(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$pull": bson.M{"pendingRequests": bson.M{"user": userID}}})
	return err
}

// GetUserGroups returns groups the user is a member of.
func (r *MongoGroupRepository) GetUserGroups(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error) {
	return r.find(ctx, bson.M{"isActive": true, "members.user": userID}, limit)
}

// SuggestGroups returns public groups the user has not joined.
func (r *MongoGroupRepository) SuggestGroups(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Group, error) {
	filter := bson.M{
		"isActive":     true,
		"privacy":      models.GroupPrivacyPublic,
		"members.user": bson.M{"$ne": userID},
	}
	return r.find(ctx, filter, limit)
}

func (r *MongoGroupRepository) find(ctx context.Context, filter bson.M, limit int64) ([]models.Group, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].FillCounts()
	}
	return groups, nil
}
