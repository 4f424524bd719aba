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

type couponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository returns the ledger backed by the coupons collection.
// The ledger is never cached: every read must see the latest balance.
func NewCouponRepository(db *mongo.Database) interfaces.CouponRepository {
	return &couponRepository{
		collection: db.Collection("coupons"),
	}
}

func (r *couponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.ID = primitive.NewObjectID()
	if coupon.ActivatedAt.IsZero() {
		coupon.ActivatedAt = time.Now()
	}
	coupon.UpdatedAt = coupon.ActivatedAt

	if _, err := r.collection.InsertOne(ctx, coupon); err != nil {
		return wrap(err, "create coupon")
	}

	return nil
}

func (r *couponRepository) GetActiveByUser(ctx context.Context, userID string) (*models.Coupon, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "activated_at", Value: -1}})

	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "is_valid": true}, opts).Decode(&coupon)
	if err != nil {
		return nil, notFoundOr(err, "get active coupon")
	}

	return &coupon, nil
}

func (r *couponRepository) ListByUser(ctx context.Context, userID string) ([]*models.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "activated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrap(err, "list coupons")
	}
	defer cursor.Close(ctx)

	coupons := []*models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, wrap(err, "decode coupons")
	}

	return coupons, nil
}

// Deduct runs as one pipeline update so concurrent deductions against the
// same coupon serialize on the document and none is lost.
func (r *couponRepository) Deduct(ctx context.Context, sel interfaces.CouponSelector, amount int64) (*models.Coupon, int64, error) {
	filter := bson.M{
		"user_id":  sel.UserID,
		"is_valid": true,
		"balance":  bson.M{"$gt": 0},
	}
	if sel.CouponID != "" {
		filter["coupon_id"] = sel.CouponID
	}
	if sel.Code != "" {
		filter["code"] = sel.Code
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"balance":    bson.M{"$max": bson.A{int64(0), bson.M{"$subtract": bson.A{"$balance", amount}}}},
			"updated_at": "$$NOW",
		}}},
		{{Key: "$set", Value: bson.M{
			"is_valid": bson.M{"$gt": bson.A{"$balance", int64(0)}},
		}}},
	}

	// The pre-image tells us how much was actually taken; the post-state
	// follows deterministically from it.
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "activated_at", Value: -1}}).
		SetReturnDocument(options.Before)

	var before models.Coupon
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before); err != nil {
		return nil, 0, notFoundOr(err, "deduct coupon value")
	}

	taken := amount
	if taken > before.Balance {
		taken = before.Balance
	}

	after := before
	after.Balance = before.Balance - taken
	after.IsValid = after.Balance > 0
	after.UpdatedAt = time.Now()

	return &after, taken, nil
}
