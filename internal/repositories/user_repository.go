package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/arafatr/linkup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SearchUsers(ctx context.Context, term string, limit int64) ([]models.PublicProfile, error)
	GetProfiles(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicProfile, error)
	AddFriends(ctx context.Context, a, b primitive.ObjectID) error
	RemoveFriends(ctx context.Context, a, b primitive.ObjectID) error
	BlockUser(ctx context.Context, blocker, blocked primitive.ObjectID) error
	UnblockUser(ctx context.Context, blocker, blocked primitive.ObjectID) error
	SetPresence(ctx context.Context, id primitive.ObjectID, online bool) error
	SuggestFriends(ctx context.Context, user *models.User, exclude []primitive.ObjectID, limit int64) ([]models.PublicProfile, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the search/presence indexes.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "firebaseUid", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{Keys: bson.D{{Key: "isOnline", Value: 1}}},
		{Keys: bson.D{{Key: "friends", Value: 1}}},
	})
	return err
}

// CreateUser inserts a new user. ErrDuplicate is returned when the email is taken.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.LastSeen = user.CreatedAt
	user.IsActive = true
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetUserByID retrieves a user by ObjectID.
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by its Firebase UID.
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"firebaseUid": firebaseUID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial $set update to a user document.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SearchUsers matches active users by name or bio, case-insensitive.
func (r *MongoUserRepository) SearchUsers(ctx context.Context, term string, limit int64) ([]models.PublicProfile, error) {
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"name": bson.M{"$regex": term, "$options": "i"}},
			bson.M{"bio": bson.M{"$regex": term, "$options": "i"}},
		},
	}
	findOptions := options.Find().SetLimit(limit).SetProjection(profileProjection())
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.PublicProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfiles resolves a list of user ids to their public profiles.
func (r *MongoUserRepository) GetProfiles(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicProfile, error) {
	if len(ids) == 0 {
		return []models.PublicProfile{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(profileProjection()))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.PublicProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// AddFriends adds each user to the other's friend set.
func (r *MongoUserRepository) AddFriends(ctx context.Context, a, b primitive.ObjectID) error {
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$addToSet": bson.M{"friends": b}}); err != nil {
		return fmt.Errorf("adding friend to %s: %w", a.Hex(), err)
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$addToSet": bson.M{"friends": a}}); err != nil {
		return fmt.Errorf("adding friend to %s: %w", b.Hex(), err)
	}
	return nil
}

// RemoveFriends removes each user from the other's friend set.
func (r *MongoUserRepository) RemoveFriends(ctx context.Context, a, b primitive.ObjectID) error {
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$pull": bson.M{"friends": b}}); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$pull": bson.M{"friends": a}})
	return err
}

// BlockUser adds the target to the blocked set and severs any friendship.
func (r *MongoUserRepository) BlockUser(ctx context.Context, blocker, blocked primitive.ObjectID) error {
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": blocker}, bson.M{
		"$addToSet": bson.M{"blockedUsers": blocked},
		"$pull":     bson.M{"friends": blocked},
	}); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": blocked}, bson.M{"$pull": bson.M{"friends": blocker}})
	return err
}

// UnblockUser removes the target from the blocked set.
func (r *MongoUserRepository) UnblockUser(ctx context.Context, blocker, blocked primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": blocker}, bson.M{"$pull": bson.M{"blockedUsers": blocked}})
	return err
}

// SetPresence flips the online flag; going offline also stamps lastSeen.
func (r *MongoUserRepository) SetPresence(ctx context.Context, id primitive.ObjectID, online bool) error {
	fields := bson.M{"isOnline": online}
	if !online {
		fields["lastSeen"] = time.Now()
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

// SuggestFriends returns active users who are not the user, not already
// friends, not blocked in either direction, and not in the exclude list
// (pending-request counterparts).
func (r *MongoUserRepository) SuggestFriends(ctx context.Context, user *models.User, exclude []primitive.ObjectID, limit int64) ([]models.PublicProfile, error) {
	excluded := append([]primitive.ObjectID{user.ID}, user.Friends...)
	excluded = append(excluded, user.BlockedUsers...)
	excluded = append(excluded, exclude...)

	filter := bson.M{
		"isActive":     true,
		"_id":          bson.M{"$nin": excluded},
		"blockedUsers": bson.M{"$ne": user.ID},
	}
	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(profileProjection())
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.PublicProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func profileProjection() bson.M {
	return bson.M{
		"name": 1, "avatar": 1, "bio": 1, "location": 1, "isOnline": 1, "lastSeen": 1,
	}
}
