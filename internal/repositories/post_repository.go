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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetFeed(ctx context.Context, viewer primitive.ObjectID, friends []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error)
	GetPostsByAuthor(ctx context.Context, author primitive.ObjectID, visibilities []string, skip, limit int64) ([]models.Post, int64, error)
	GetGroupPosts(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error
	RemoveReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error
	IncrementCommentsCount(ctx context.Context, id primitive.ObjectID, delta int) error
	IncrementSharesCount(ctx context.Context, id primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the feed and tag indexes.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "reactedUsers.user", Value: 1}}},
	})
	return err
}

// CreatePost inserts a new post document.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.ReactedUsers == nil {
		post.ReactedUsers = []models.ReactedUser{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ObjectID.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetFeed returns the viewer's feed page: public posts, friends-visibility
// posts by the viewer's friends, and the viewer's own posts. Group posts do
// not appear in the home feed.
func (r *MongoPostRepository) GetFeed(ctx context.Context, viewer primitive.ObjectID, friends []primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{
		"group": nil,
		"$or": bson.A{
			bson.M{"visibility": models.VisibilityPublic},
			bson.M{"visibility": models.VisibilityFriends, "author": bson.M{"$in": friends}},
			bson.M{"author": viewer},
		},
	}
	return r.findPage(ctx, filter, skip, limit, bson.D{{Key: "createdAt", Value: -1}})
}

// GetPostsByAuthor returns one author's posts restricted to the given
// visibility levels (nil means no restriction, i.e. the author themself).
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, author primitive.ObjectID, visibilities []string, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"author": author}
	if visibilities != nil {
		filter["visibility"] = bson.M{"$in": visibilities}
	}
	return r.findPage(ctx, filter, skip, limit, bson.D{{Key: "createdAt", Value: -1}})
}

// GetGroupPosts returns the latest posts targeted at a group.
func (r *MongoPostRepository) GetGroupPosts(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.Post, error) {
	posts, _, err := r.findPage(ctx, bson.M{"group": groupID}, 0, limit, bson.D{{Key: "createdAt", Value: -1}})
	return posts, err
}

func (r *MongoPostRepository) findPage(ctx context.Context, filter bson.M, skip, limit int64, sort bson.D) ([]models.Post, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdatePost applies a partial $set update to a post document.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost removes a post document.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AddReaction records a user's reaction: bumps the per-type counter and adds
// the user to the reactedUsers set. The filter excludes users already in the
// set so a concurrent double-react cannot double-increment.
func (r *MongoPostRepository) AddReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "reactedUsers.user": bson.M{"$ne": userID}},
		bson.M{
			"$inc":      bson.M{"reactions." + reactionType: 1},
			"$addToSet": bson.M{"reactedUsers": models.ReactedUser{User: userID, ReactionType: reactionType}},
		})
	return err
}

// RemoveReaction undoes a user's reaction of the given type.
func (r *MongoPostRepository) RemoveReaction(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID, reactionType string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc":  bson.M{"reactions." + reactionType: -1},
		"$pull": bson.M{"reactedUsers": bson.M{"user": userID}},
	})
	return err
}

// IncrementCommentsCount adjusts the denormalized comment counter.
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"commentsCount": delta}})
	return err
}

// IncrementSharesCount bumps the share counter.
func (r *MongoPostRepository) IncrementSharesCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"sharesCount": 1}})
	return err
}
