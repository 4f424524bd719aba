package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
)

const userCacheTTL = 15 * time.Minute

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewUserRepository(db *mongo.Database, cache CacheService) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Wishlist == nil {
		user.Wishlist = []primitive.ObjectID{}
	}
	if user.RecentlyViewed == nil {
		user.RecentlyViewed = []primitive.ObjectID{}
	}
	if user.PurchaseHistory == nil {
		user.PurchaseHistory = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return wrap(err, "create user")
	}

	return nil
}

// GetByID serves the account facade. Cached copies never carry the password
// hash, so authentication paths must use GetByEmail.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "get user")
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

// Authentication operations
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&user); err != nil {
		return nil, notFoundOr(err, "get user by google id")
	}
	return &user, nil
}

func (r *userRepository) LinkGoogleAccount(ctx context.Context, id, googleID, picture string) error {
	set := bson.M{"google_id": googleID, "is_email_verified": true}
	if picture != "" {
		set["profile_picture"] = picture
	}
	return r.updateOne(ctx, id, bson.M{"$set": set}, "link google account")
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": passwordHash}}, "update password")
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"is_email_verified": true}}, "verify email")
}

// Shopping state

// AddToWishlist reports false when the product was already present.
func (r *userRepository) AddToWishlist(ctx context.Context, id, productID string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, fmt.Errorf("invalid product id: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "wishlist": bson.M{"$ne": pid}},
		bson.M{
			"$push": bson.M{"wishlist": pid},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, wrap(err, "add to wishlist")
	}

	if res.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return false, wrap(err, "add to wishlist")
		}
		if count == 0 {
			return false, interfaces.ErrNotFound
		}
		return false, nil
	}

	r.invalidateUserCache(ctx, id)

	return true, nil
}

// PushRecentlyViewed moves productID to the head of the list, dropping any
// earlier occurrence and keeping at most limit entries.
func (r *userRepository) PushRecentlyViewed(ctx context.Context, id, productID string, limit int) error {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"recently_viewed": bson.M{"$slice": bson.A{
				bson.M{"$concatArrays": bson.A{
					bson.A{pid},
					bson.M{"$filter": bson.M{
						"input": bson.M{"$ifNull": bson.A{"$recently_viewed", bson.A{}}},
						"cond":  bson.M{"$ne": bson.A{"$$this", pid}},
					}},
				}},
				limit,
			}},
			"updated_at": "$$NOW",
		}}},
	}

	return r.updateOne(ctx, id, pipeline, "update recently viewed")
}

func (r *userRepository) AppendPurchase(ctx context.Context, id, orderID string) error {
	return r.updateOne(ctx, id, bson.M{"$push": bson.M{"purchase_history": orderID}}, "update order history")
}

func (r *userRepository) UpdateAddress(ctx context.Context, id string, address *models.Address) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"address": address}}, "update address")
}

func (r *userRepository) updateOne(ctx context.Context, id string, update interface{}, action string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	if doc, ok := update.(bson.M); ok {
		set, _ := doc["$set"].(bson.M)
		if set == nil {
			set = bson.M{}
			doc["$set"] = set
		}
		set["updated_at"] = time.Now()
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return wrap(err, action)
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	r.invalidateUserCache(ctx, id)

	return nil
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		r.cache.Set(ctx, r.cacheKey(user.ID.Hex()), user, userCacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, r.cacheKey(userID), &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, r.cacheKey(userID))
	}
}

func (r *userRepository) cacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}
