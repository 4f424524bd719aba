package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
	"storefront/pkg/logger"
)

// AccountService manages a signed-in user's shopping state.
type AccountService interface {
	AddToWishlist(ctx context.Context, userID, productID string) ([]primitive.ObjectID, error)
	AddToRecentlyViewed(ctx context.Context, userID, productID string) ([]primitive.ObjectID, error)
	AddToOrderHistory(ctx context.Context, userID, orderID string) ([]string, error)
	UpdateAddress(ctx context.Context, userID string, address *models.Address) (*models.Address, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type accountService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewAccountService(userRepo interfaces.UserRepository, logger *logger.Logger) AccountService {
	return &accountService{userRepo: userRepo, logger: logger}
}

func (s *accountService) AddToWishlist(ctx context.Context, userID, productID string) ([]primitive.ObjectID, error) {
	if err := requireProductID(productID); err != nil {
		return nil, err
	}

	added, err := s.userRepo.AddToWishlist(ctx, userID, productID)
	if err != nil {
		return nil, s.fail(ctx, err, "add to wishlist")
	}
	if !added {
		return nil, newError(KindInvalidInput, utils.ErrAlreadyInWishlist)
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "wishlist_add", map[string]interface{}{"product_id": productID})

	return user.Wishlist, nil
}

func (s *accountService) AddToRecentlyViewed(ctx context.Context, userID, productID string) ([]primitive.ObjectID, error) {
	if err := requireProductID(productID); err != nil {
		return nil, err
	}

	if err := s.userRepo.PushRecentlyViewed(ctx, userID, productID, models.MaxRecentlyViewed); err != nil {
		return nil, s.fail(ctx, err, "update recently viewed")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user.RecentlyViewed, nil
}

func (s *accountService) AddToOrderHistory(ctx context.Context, userID, orderID string) ([]string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, newError(KindInvalidInput, "Order ID is required.")
	}

	if err := s.userRepo.AppendPurchase(ctx, userID, orderID); err != nil {
		return nil, s.fail(ctx, err, "update order history")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user.PurchaseHistory, nil
}

func (s *accountService) UpdateAddress(ctx context.Context, userID string, address *models.Address) (*models.Address, error) {
	if address == nil {
		return nil, newError(KindInvalidInput, "Address is required.")
	}

	if err := s.userRepo.UpdateAddress(ctx, userID, address); err != nil {
		return nil, s.fail(ctx, err, "update address")
	}

	return address, nil
}

func (s *accountService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

func (s *accountService) load(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, err, "load user")
	}
	return user, nil
}

func (s *accountService) fail(ctx context.Context, err error, action string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return newError(KindNotFound, utils.ErrUserNotFound)
	}
	s.logger.WithContext(ctx).WithError(err).WithField("action", action).Error("Account operation failed")
	return internalError(err, action)
}

func requireProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return newError(KindInvalidInput, "Product ID is required.")
	}
	if !primitive.IsValidObjectID(productID) {
		return newError(KindInvalidInput, "Invalid product ID.")
	}
	return nil
}
