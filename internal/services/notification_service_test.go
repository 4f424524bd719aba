package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/pkg/sms"
)

type fakeSMS struct {
	mu   sync.Mutex
	sent []*sms.Message
	err  error
}

func (f *fakeSMS) Send(_ context.Context, message *sms.Message) (*sms.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, message)
	return &sms.Result{MessageID: "m1", Status: "sent"}, nil
}

func TestSMSNotifier_CouponActivated(t *testing.T) {
	provider := &fakeSMS{}
	notifier := NewSMSNotifier(provider, "NGN")
	coupon := &models.Coupon{Code: "SAVE50K", Balance: 50000}

	require.NoError(t, notifier.CouponActivated(context.Background(), &models.User{}, coupon))
	require.NoError(t, notifier.CouponActivated(context.Background(), &models.User{Address: &models.Address{Mobile: "  "}}, coupon))
	assert.Empty(t, provider.sent)

	user := &models.User{Address: &models.Address{Mobile: " +2348000000000 "}}
	require.NoError(t, notifier.CouponActivated(context.Background(), user, coupon))
	require.Len(t, provider.sent, 1)
	assert.Equal(t, "+2348000000000", provider.sent[0].To)
	assert.Equal(t, "Your coupon SAVE50K is active with a balance of 50000 NGN.", provider.sent[0].Body)
	assert.Equal(t, sms.TypeTransactional, provider.sent[0].Type)

	provider.err = assert.AnError
	assert.ErrorIs(t, notifier.CouponActivated(context.Background(), user, coupon), assert.AnError)
}

func TestCouponService_ActivationNotice(t *testing.T) {
	f := newCouponFixture(t)
	f.user.Address = &models.Address{Mobile: "+15550100"}
	provider := &fakeSMS{}
	f.svc.notifier = NewSMSNotifier(provider, "NGN")

	_, err := f.svc.Activate(context.Background(), f.userID(), "SAVE50K")
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
	assert.Contains(t, provider.sent[0].Body, "SAVE50K")
}

func TestCouponService_ActivationNoticeFailureKeepsCoupon(t *testing.T) {
	f := newCouponFixture(t)
	f.user.Address = &models.Address{Mobile: "+15550100"}
	f.svc.notifier = NewSMSNotifier(&fakeSMS{err: assert.AnError}, "NGN")

	coupon, err := f.svc.Activate(context.Background(), f.userID(), "SAVE50K")
	require.NoError(t, err)
	assert.True(t, coupon.IsValid)
	assert.Equal(t, 1, f.coupons.validCount(f.userID()))
}
