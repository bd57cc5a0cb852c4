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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error)
	GetReplies(ctx context.Context, parentID primitive.ObjectID, limit int64) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) error
	IncrementRepliesCount(ctx context.Context, id primitive.ObjectID, delta int) error
	AddReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error
	RemoveReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// EnsureIndexes creates the post/author/reply lookup indexes.
func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "parentComment", Value: 1}}},
	})
	return err
}

// CreateComment inserts a new comment. Replies bump the parent's counter.
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.ReactedUsers == nil {
		comment.ReactedUsers = []models.ReactedUser{}
	}
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return err
	}
	if comment.ParentComment != nil {
		_, err := r.collection.UpdateOne(ctx, bson.M{"_id": *comment.ParentComment},
			bson.M{"$inc": bson.M{"repliesCount": 1}})
		return err
	}
	return nil
}

// GetCommentByID retrieves a comment by ObjectID.
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPost returns one page of a post's top-level comments, newest first.
func (r *MongoCommentRepository) GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	filter := bson.M{"post": postID, "parentComment": nil}
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

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// GetReplies returns a comment's replies, oldest first.
func (r *MongoCommentRepository) GetReplies(ctx context.Context, parentID primitive.ObjectID, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"parentComment": parentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	replies := []models.Comment{}
	if err := cursor.All(ctx, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateComment applies a partial $set update.
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment removes a comment and its direct replies, returning how many
// documents went away (so the post counter can be adjusted).
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"_id": id},
		bson.M{"parentComment": id},
	}})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, ErrCommentNotFound
	}
	return res.DeletedCount, nil
}

// DeleteCommentsByPost removes every comment under a post (post deletion cascade).
func (r *MongoCommentRepository) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"post": postID})
	return err
}

// IncrementRepliesCount adjusts the denormalized reply counter.
func (r *MongoCommentRepository) IncrementRepliesCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"repliesCount": delta}})
	return err
}

// AddReaction records a user's reaction on a comment. The filter excludes
// users already in the set so a concurrent double-react cannot
// double-increment.
func (r *MongoCommentRepository) AddReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "reactedUsers.user": bson.M{"$ne": userID}},
		bson.M{
			"$inc":      bson.M{"reactions." + reactionType: 1},
			"$addToSet": bson.M{"reactedUsers": models.ReactedUser{User: userID, ReactionType: reactionType}},
		})
	return err
}

// RemoveReaction undoes a user's reaction of the given type.
func (r *MongoCommentRepository) RemoveReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc":  bson.M{"reactions." + reactionType: -1},
		"$pull": bson.M{"reactedUsers": bson.M{"user": userID}},
	})
	return err
}
