package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	Category     string             `json:"category" bson:"category"`
	Price        int64              `json:"price" bson:"price"`
	Stock        int                `json:"stock" bson:"stock"`
	ImageURL     string             `json:"imageUrl" bson:"image_url"`
	ImageKey     string             `json:"-" bson:"image_key,omitempty"`
	Measurements []Measurement      `json:"measurements" bson:"measurements"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

type Measurement struct {
	Label    string `json:"label" bson:"label"`
	Value    string `json:"value" bson:"value"`
	Unit     string `json:"unit,omitempty" bson:"unit,omitempty"`
	ImageURL string `json:"imageUrl" bson:"image_url"`
	ImageKey string `json:"-" bson:"image_key,omitempty"`
	// ExistingImageURL lets an update keep a previously uploaded image.
	ExistingImageURL string `json:"existingImageUrl,omitempty" bson:"-"`
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	Category string
	Search   string
}
