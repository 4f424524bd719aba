package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// MaxRecentlyViewed bounds User.RecentlyViewed.
const MaxRecentlyViewed = 10

type User struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Email           string               `json:"email" bson:"email"`
	Password        string               `json:"-" bson:"password"`
	IsAdmin         bool                 `json:"isAdmin" bson:"is_admin"`
	AuthProvider    AuthProvider         `json:"-" bson:"auth_provider"`
	GoogleID        string               `json:"-" bson:"google_id,omitempty"`
	ProfilePicture  string               `json:"picture,omitempty" bson:"profile_picture,omitempty"`
	IsEmailVerified bool                 `json:"emailVerified" bson:"is_email_verified"`
	Wishlist        []primitive.ObjectID `json:"wishlist" bson:"wishlist"`
	RecentlyViewed  []primitive.ObjectID `json:"recentlyViewed" bson:"recently_viewed"`
	PurchaseHistory []string             `json:"purchaseHistory" bson:"purchase_history"`
	Address         *Address             `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt       time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updated_at"`
}

type Address struct {
	Mobile      string `json:"mobile" bson:"mobile"`
	HouseNumber string `json:"hnumber" bson:"hnumber"`
	Street      string `json:"street" bson:"street"`
	City        string `json:"city" bson:"city"`
	State       string `json:"state" bson:"state"`
}

// Profile is the account view returned to its owner.
type Profile struct {
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Address         *Address             `json:"address"`
	Wishlist        []primitive.ObjectID `json:"wishlist"`
	RecentlyViewed  []primitive.ObjectID `json:"recentlyViewed"`
	PurchaseHistory []string             `json:"purchaseHistory"`
}

func (u *User) Profile() *Profile {
	p := &Profile{
		Name:            u.Name,
		Email:           u.Email,
		Address:         u.Address,
		Wishlist:        u.Wishlist,
		RecentlyViewed:  u.RecentlyViewed,
		PurchaseHistory: u.PurchaseHistory,
	}
	if p.Wishlist == nil {
		p.Wishlist = []primitive.ObjectID{}
	}
	if p.RecentlyViewed == nil {
		p.RecentlyViewed = []primitive.ObjectID{}
	}
	if p.PurchaseHistory == nil {
		p.PurchaseHistory = []string{}
	}
	return p
}
