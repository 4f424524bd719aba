package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

type CouponService interface {
	// Lifecycle
	Activate(ctx context.Context, userID, code string) (*models.Coupon, error)
	Validate(ctx context.Context, userID string) (*models.Coupon, error)
	UpdateValue(ctx context.Context, request *UpdateValueRequest) (*models.Deduction, error)
	History(ctx context.Context, userID string) ([]*models.Coupon, error)

	// Registry administration
	CreateCode(ctx context.Context, code string, valid bool) (*models.CouponCode, error)
	SetCodeValidity(ctx context.Context, code string, valid bool) (*models.CouponCode, error)
}

// UpdateValueRequest spends UsedValue against the user's valid coupon.
// CouponCode and CouponID optionally narrow which coupon is charged.
type UpdateValueRequest struct {
	UserID         string
	CouponCode     string
	CouponID       string
	UsedValue      int64
	IdempotencyKey string
}

type CouponServiceConfig struct {
	ActivationValue int64
	// Notifier is told about new coupons. Nil disables notifications.
	Notifier Notifier
}

type couponService struct {
	userRepo        interfaces.UserRepository
	codeRepo        interfaces.CouponCodeRepository
	couponRepo      interfaces.CouponRepository
	idempotency     *IdempotencyStore
	activationValue int64
	notifier        Notifier
	logger          *logger.Logger

	newCouponID func() string
	now         func() time.Time
}

func NewCouponService(
	userRepo interfaces.UserRepository,
	codeRepo interfaces.CouponCodeRepository,
	couponRepo interfaces.CouponRepository,
	idempotency *IdempotencyStore,
	config CouponServiceConfig,
	logger *logger.Logger,
) CouponService {
	return &couponService{
		userRepo:        userRepo,
		codeRepo:        codeRepo,
		couponRepo:      couponRepo,
		idempotency:     idempotency,
		activationValue: config.ActivationValue,
		notifier:        config.Notifier,
		logger:          logger,
		newCouponID:     uuid.NewString,
		now:             time.Now,
	}
}

// Activate turns a registry code into a fresh coupon for userID. The checks
// run in a fixed order: identity, account, existing coupon, code.
func (s *couponService) Activate(ctx context.Context, userID, code string) (coupon *models.Coupon, err error) {
	defer func() { s.record("activate", err) }()

	if userID == "" {
		return nil, newError(KindUnauthenticated, "User not authenticated")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(KindNotFound, utils.ErrUserNotFound)
		}
		return nil, s.internal(ctx, err, "load account")
	}

	if _, err := s.couponRepo.GetActiveByUser(ctx, userID); err == nil {
		return nil, newError(KindConflict, utils.ErrActiveCouponExists)
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, s.internal(ctx, err, "check active coupon")
	}

	code = utils.NormalizeCouponCode(code)
	if code == "" {
		return nil, newError(KindInvalidInput, utils.ErrInvalidCouponCode)
	}

	registered, err := s.codeRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(KindInvalidInput, utils.ErrInvalidCouponCode)
		}
		return nil, s.internal(ctx, err, "look up coupon code")
	}
	if !registered.IsValid {
		return nil, newError(KindInvalidInput, utils.ErrInvalidCouponCode)
	}

	coupon = &models.Coupon{
		UserID:      userID,
		CouponID:    s.newCouponID(),
		Code:        registered.Code,
		Balance:     s.activationValue,
		IsValid:     true,
		ActivatedAt: s.now(),
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		// The partial unique index on valid coupons rejects a concurrent
		// activation that slipped past the check above.
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, newError(KindConflict, utils.ErrActiveCouponExists)
		}
		return nil, s.internal(ctx, err, "create coupon")
	}

	s.logger.WithContext(ctx).LogCouponEvent(coupon.CouponID, utils.EventCouponActivated, map[string]interface{}{
		"user_id": userID,
		"code":    coupon.Code,
		"balance": coupon.Balance,
	})

	if s.notifier != nil {
		if err := s.notifier.CouponActivated(ctx, user, coupon); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Coupon activation notice not sent")
		}
	}

	return coupon, nil
}

// Validate returns the user's valid coupon, or nil when there is none.
func (s *couponService) Validate(ctx context.Context, userID string) (coupon *models.Coupon, err error) {
	defer func() { s.record("validate", err) }()

	if userID == "" {
		return nil, newError(KindUnauthenticated, "User not authenticated")
	}

	coupon, err = s.couponRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, s.internal(ctx, err, "load active coupon")
	}

	return coupon, nil
}

// UpdateValue charges the user's valid coupon. Only entries with IsValid set
// are eligible; an exhausted coupon is never charged again. The deduction is
// a single conditional update in the ledger, so concurrent calls cannot
// lose a decrement. A nil Deduction with a nil error means no spendable
// coupon matched.
func (s *couponService) UpdateValue(ctx context.Context, request *UpdateValueRequest) (result *models.Deduction, err error) {
	outcome := "update_value"
	defer func() { s.record(outcome, err) }()

	if request == nil || request.UserID == "" {
		return nil, newError(KindUnauthenticated, "User not authenticated")
	}
	if request.UsedValue < 0 {
		return nil, newError(KindInvalidInput, "usedValue must not be negative")
	}

	key := strings.TrimSpace(request.IdempotencyKey)
	if len(key) > utils.MaxIdempotencyKey {
		return nil, newError(KindInvalidInput, "Idempotency key is too long")
	}

	if key != "" && s.idempotency != nil {
		existing, reserved, err := s.idempotency.Reserve(ctx, request.UserID, key)
		if err != nil {
			return nil, s.internal(ctx, err, "reserve idempotency key")
		}
		if !reserved {
			if existing.State == idempotencyDone {
				outcome = "update_value_replay"
				couponID := ""
				if existing.Result != nil {
					couponID = existing.Result.CouponID
				}
				s.logger.WithContext(ctx).LogCouponEvent(couponID, utils.EventCouponReplayed, map[string]interface{}{
					"user_id":         request.UserID,
					"idempotency_key": key,
				})
				return existing.Result, nil
			}
			return nil, newError(KindConflict, utils.ErrDeductionInProgress)
		}
	}

	coupon, taken, err := s.couponRepo.Deduct(ctx, interfaces.CouponSelector{
		UserID:   request.UserID,
		CouponID: strings.TrimSpace(request.CouponID),
		Code:     utils.NormalizeCouponCode(request.CouponCode),
	}, request.UsedValue)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		if key != "" && s.idempotency != nil {
			if rerr := s.idempotency.Release(ctx, request.UserID, key); rerr != nil {
				s.logger.WithContext(ctx).WithError(rerr).Warn("Failed to release idempotency key")
			}
		}
		return nil, s.internal(ctx, err, "deduct coupon value")
	}

	if coupon != nil {
		result = &models.Deduction{
			CouponID:       coupon.CouponID,
			Code:           coupon.Code,
			RemainingValue: coupon.Balance,
			IsValid:        coupon.IsValid,
		}

		metrics.AddCouponDeducted(taken)

		event := utils.EventCouponDeducted
		if !coupon.IsValid {
			event = utils.EventCouponExhausted
		}
		s.logger.WithContext(ctx).LogCouponEvent(coupon.CouponID, event, map[string]interface{}{
			"user_id":   request.UserID,
			"requested": request.UsedValue,
			"deducted":  taken,
			"remaining": coupon.Balance,
		})
	}

	if key != "" && s.idempotency != nil {
		if err := s.idempotency.Complete(ctx, request.UserID, key, result); err != nil {
			// The deduction is committed; a missing record only weakens
			// replay of later retries.
			s.logger.WithContext(ctx).WithError(err).Error("Failed to store idempotency result")
		}
	}

	return result, nil
}

func (s *couponService) History(ctx context.Context, userID string) (coupons []*models.Coupon, err error) {
	defer func() { s.record("history", err) }()

	if userID == "" {
		return nil, newError(KindUnauthenticated, "User not authenticated")
	}

	coupons, err = s.couponRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.internal(ctx, err, "list coupons")
	}

	return coupons, nil
}

func (s *couponService) CreateCode(ctx context.Context, code string, valid bool) (*models.CouponCode, error) {
	code = utils.NormalizeCouponCode(code)
	if !utils.IsValidCouponCode(code) {
		return nil, newError(KindInvalidInput, "Invalid coupon code format")
	}

	couponCode := &models.CouponCode{Code: code, IsValid: valid}
	if err := s.codeRepo.Create(ctx, couponCode); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, newError(KindConflict, "Coupon code already exists")
		}
		return nil, s.internal(ctx, err, "create coupon code")
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"code":     code,
		"is_valid": valid,
		"event":    utils.EventCouponCodeIssued,
	}).Info("Coupon code issued")

	return couponCode, nil
}

func (s *couponService) SetCodeValidity(ctx context.Context, code string, valid bool) (*models.CouponCode, error) {
	code = utils.NormalizeCouponCode(code)
	if code == "" {
		return nil, newError(KindInvalidInput, "Coupon code is required")
	}

	updated, err := s.codeRepo.SetValidity(ctx, code, valid)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(KindNotFound, "Coupon code not found")
		}
		return nil, s.internal(ctx, err, "update coupon code")
	}

	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"code":     code,
		"is_valid": valid,
	}).Info("Coupon code validity changed")

	return updated, nil
}

func (s *couponService) internal(ctx context.Context, err error, action string) error {
	s.logger.WithContext(ctx).WithError(err).WithField("action", action).Error("Coupon operation failed")
	return internalError(err, action)
}

func (s *couponService) record(operation string, err error) {
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
	}
	metrics.IncCouponOperation(operation, result)
}
