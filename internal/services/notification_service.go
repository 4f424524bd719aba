package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"storefront/internal/models"
	"storefront/pkg/sms"
)

// Notifier tells a customer about changes to their coupon.
type Notifier interface {
	CouponActivated(ctx context.Context, user *models.User, coupon *models.Coupon) error
}

type smsNotifier struct {
	provider sms.Provider
	currency string
}

// NewSMSNotifier texts the mobile number on the user's saved address. Users
// without one are skipped.
func NewSMSNotifier(provider sms.Provider, currency string) Notifier {
	return &smsNotifier{provider: provider, currency: currency}
}

func (n *smsNotifier) CouponActivated(ctx context.Context, user *models.User, coupon *models.Coupon) error {
	if user == nil || user.Address == nil || strings.TrimSpace(user.Address.Mobile) == "" {
		return nil
	}

	_, err := n.provider.Send(ctx, &sms.Message{
		To:   strings.TrimSpace(user.Address.Mobile),
		Body: fmt.Sprintf("Your coupon %s is active with a balance of %d %s.", coupon.Code, coupon.Balance, n.currency),
		Type: sms.TypeTransactional,
	})
	if err != nil {
		return errors.Wrap(err, "send activation sms")
	}
	return nil
}
