package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
)

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) interfaces.ProductRepository {
	return &productRepository{
		collection: db.Collection("products"),
	}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	if product.Measurements == nil {
		product.Measurements = []models.Measurement{}
	}

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return wrap(err, "create product")
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "get product")
	}

	return &product, nil
}

func (r *productRepository) Replace(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	if product.Measurements == nil {
		product.Measurements = []models.Measurement{}
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return wrap(err, "update product")
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

// Delete removes the product and returns the deleted document so callers can
// clean up its stored images.
func (r *productRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "delete product")
	}

	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, wrap(err, "count products")
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrap(err, "list products")
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, wrap(err, "decode products")
	}

	return products, total, nil
}
