package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
)

type couponCodeRepository struct {
	collection *mongo.Collection
	cache      CacheService
	cacheTTL   time.Duration
}

// NewCouponCodeRepository returns the registry backed by the coupon_codes
// collection. Lookups are cached for cacheTTL when cache is non-nil.
func NewCouponCodeRepository(db *mongo.Database, cache CacheService, cacheTTL time.Duration) interfaces.CouponCodeRepository {
	return &couponCodeRepository{
		collection: db.Collection("coupon_codes"),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

func (r *couponCodeRepository) GetByCode(ctx context.Context, code string) (*models.CouponCode, error) {
	if r.cache != nil && r.cacheTTL > 0 {
		var cached models.CouponCode
		if err := r.cache.Get(ctx, r.cacheKey(code), &cached); err == nil {
			return &cached, nil
		}
	}

	var couponCode models.CouponCode
	if err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&couponCode); err != nil {
		return nil, notFoundOr(err, "get coupon code")
	}

	if r.cache != nil && r.cacheTTL > 0 {
		r.cache.Set(ctx, r.cacheKey(code), couponCode, r.cacheTTL)
	}

	return &couponCode, nil
}

func (r *couponCodeRepository) Create(ctx context.Context, code *models.CouponCode) error {
	code.ID = primitive.NewObjectID()
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt

	if _, err := r.collection.InsertOne(ctx, code); err != nil {
		return wrap(err, "create coupon code")
	}

	r.invalidate(ctx, code.Code)

	return nil
}

func (r *couponCodeRepository) SetValidity(ctx context.Context, code string, valid bool) (*models.CouponCode, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.CouponCode
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"is_valid": valid, "updated_at": time.Now()}},
		opts,
	).Decode(&updated)
	if err != nil {
		return nil, notFoundOr(err, "update coupon code")
	}

	r.invalidate(ctx, code)

	return &updated, nil
}

func (r *couponCodeRepository) invalidate(ctx context.Context, code string) {
	if r.cache != nil {
		r.cache.Delete(ctx, r.cacheKey(code))
	}
}

func (r *couponCodeRepository) cacheKey(code string) string {
	return "coupon_code:" + code
}
