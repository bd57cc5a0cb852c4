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

// ListingRepository defines the interface for marketplace listing operations
type ListingRepository interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	ListListings(ctx context.Context, category, status string, skip, limit int64) ([]models.Listing, int64, error)
	UpdateListing(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	MarkSold(ctx context.Context, id primitive.ObjectID) error
	DeleteListing(ctx context.Context, id primitive.ObjectID) error
}

// MongoListingRepository implements ListingRepository for MongoDB
type MongoListingRepository struct {
	collection *mongo.Collection
}

// NewMongoListingRepository creates a new MongoListingRepository
func NewMongoListingRepository(db *mongo.Database) *MongoListingRepository {
	return &MongoListingRepository{collection: db.Collection("listings")}
}

// EnsureIndexes creates the browse indexes.
func (r *MongoListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "seller", Value: 1}}},
	})
	return err
}

// CreateListing inserts a new listing in the available state.
func (r *MongoListingRepository) CreateListing(ctx context.Context, listing *models.Listing) error {
	listing.ID = primitive.NewObjectID()
	listing.Status = models.ListingAvailable
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	_, err := r.collection.InsertOne(ctx, listing)
	return err
}

// GetListingByID retrieves a listing by ObjectID.
func (r *MongoListingRepository) GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// ListListings returns one page of listings, newest first.
func (r *MongoListingRepository) ListListings(ctx context.Context, category, status string, skip, limit int64) ([]models.Listing, int64, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		filter["status"] = status
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

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// UpdateListing applies a partial $set update.
func (r *MongoListingRepository) UpdateListing(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrListingNotFound
	}
	return nil
}

// MarkSold flips an available listing to sold exactly once; a replay reports
// ErrAlreadyHandled.
func (r *MongoListingRepository) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ListingAvailable},
		bson.M{"$set": bson.M{"status": models.ListingSold, "soldAt": now, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, lookupErr := r.GetListingByID(ctx, id); lookupErr == nil {
			return ErrAlreadyHandled
		}
		return ErrListingNotFound
	}
	return nil
}

// DeleteListing removes a listing document.
func (r *MongoListingRepository) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrListingNotFound
	}
	return nil
}
