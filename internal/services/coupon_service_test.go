package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/pkg/logger"
)

const testActivationValue = 50000

type couponFixture struct {
	svc     *couponService
	users   *fakeUserRepo
	codes   *fakeCodeRepo
	coupons *fakeCouponRepo
	cache   *fakeCache
	user    *models.User
}

func newCouponFixture(t *testing.T) *couponFixture {
	t.Helper()

	user := &models.User{Name: "Ada", Email: "ada@example.com"}
	f := &couponFixture{
		users: newFakeUserRepo(user),
		codes: newFakeCodeRepo(
			&models.CouponCode{Code: "SAVE50K", IsValid: true},
			&models.CouponCode{Code: "RETIRED", IsValid: false},
		),
		coupons: &fakeCouponRepo{},
		cache:   newFakeCache(),
		user:    user,
	}

	var seq int64
	svc := NewCouponService(f.users, f.codes, f.coupons, NewIdempotencyStore(f.cache, time.Hour),
		CouponServiceConfig{ActivationValue: testActivationValue}, logger.NewNop())
	f.svc = svc.(*couponService)
	f.svc.newCouponID = func() string {
		return fmt.Sprintf("coupon-%d", atomic.AddInt64(&seq, 1))
	}
	return f
}

func (f *couponFixture) userID() string {
	return f.user.ID.Hex()
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected kind for %v", err)
}

func TestCouponService_LifecycleScenario(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	coupon, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)
	assert.Equal(t, int64(testActivationValue), coupon.Balance)
	assert.True(t, coupon.IsValid)
	assert.Equal(t, "SAVE50K", coupon.Code)
	assert.Equal(t, "coupon-1", coupon.CouponID)

	active, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(50000), active.Balance)

	deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), CouponCode: "SAVE50K", UsedValue: 20000})
	require.NoError(t, err)
	require.NotNil(t, deduction)
	assert.Equal(t, int64(30000), deduction.RemainingValue)
	assert.True(t, deduction.IsValid)

	deduction, err = f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 30000})
	require.NoError(t, err)
	require.NotNil(t, deduction)
	assert.Equal(t, int64(0), deduction.RemainingValue)
	assert.False(t, deduction.IsValid)

	active, err = f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	assert.Nil(t, active)

	again, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)
	assert.Equal(t, "coupon-2", again.CouponID)

	history, err := f.svc.History(ctx, f.userID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "coupon-2", history[0].CouponID)
	assert.Equal(t, int64(0), history[1].Balance)
}

func TestCouponService_UpdateValueClampsAtZero(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 9999999})
	require.NoError(t, err)
	require.NotNil(t, deduction)
	assert.Equal(t, int64(0), deduction.RemainingValue)
	assert.False(t, deduction.IsValid)

	deduction, err = f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 1})
	require.NoError(t, err)
	assert.Nil(t, deduction, "an exhausted coupon is never charged again")
}

func TestCouponService_UpdateValueZeroLeavesBalance(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 0})
	require.NoError(t, err)
	require.NotNil(t, deduction)
	assert.Equal(t, int64(50000), deduction.RemainingValue)
	assert.True(t, deduction.IsValid)
}

func TestCouponService_ActivateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, "", "SAVE50K")
		requireKind(t, err, KindUnauthenticated)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, "64b7f0c2a1b2c3d4e5f60718", "SAVE50K")
		requireKind(t, err, KindNotFound)
		assert.Equal(t, "User not found", MessageOf(err))
	})

	t.Run("unknown code creates nothing", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "NOPE")
		requireKind(t, err, KindInvalidInput)
		assert.Equal(t, "Invalid or expired coupon code", MessageOf(err))

		history, err := f.svc.History(ctx, f.userID())
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("retired code", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "RETIRED")
		requireKind(t, err, KindInvalidInput)
	})

	t.Run("empty code", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "   ")
		requireKind(t, err, KindInvalidInput)
	})

	t.Run("active coupon exists", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
		require.NoError(t, err)

		_, err = f.svc.Activate(ctx, f.userID(), "SAVE50K")
		requireKind(t, err, KindConflict)
		assert.Equal(t, "You already have an active coupon", MessageOf(err))
		assert.Equal(t, 1, f.coupons.validCount(f.userID()))
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		f := newCouponFixture(t)
		f.users.err = errors.New("connection reset")
		_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
		requireKind(t, err, KindInternal)
		assert.Equal(t, "Server error", MessageOf(err))
	})
}

func TestCouponService_ConcurrentActivationKeepsOneValid(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	// Hold every activation at Create until all have passed the pre-check.
	const workers = 8
	var arrived sync.WaitGroup
	arrived.Add(workers)
	f.coupons.beforeCreate = func() {
		arrived.Done()
		arrived.Wait()
	}

	var (
		wg        sync.WaitGroup
		ok        int64
		conflicts int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case KindOf(err) == KindConflict:
				atomic.AddInt64(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), ok)
	assert.Equal(t, int64(workers-1), conflicts)
	assert.Equal(t, 1, f.coupons.validCount(f.userID()))
}

func TestCouponService_ConcurrentDeductionsNeverLoseUpdates(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	const workers = 150
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 500})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := f.svc.History(ctx, f.userID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(0), history[0].Balance)
	assert.False(t, history[0].IsValid)
}

func TestCouponService_UpdateValueErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UsedValue: 1})
		requireKind(t, err, KindUnauthenticated)

		_, err = f.svc.UpdateValue(ctx, nil)
		requireKind(t, err, KindUnauthenticated)
	})

	t.Run("negative amount", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: -5})
		requireKind(t, err, KindInvalidInput)
	})

	t.Run("no coupon", func(t *testing.T) {
		f := newCouponFixture(t)
		deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 5})
		require.NoError(t, err)
		assert.Nil(t, deduction)
	})

	t.Run("selector mismatch", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
		require.NoError(t, err)

		deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), CouponCode: "OTHER", UsedValue: 5})
		require.NoError(t, err)
		assert.Nil(t, deduction)

		deduction, err = f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), CouponID: "coupon-1", UsedValue: 5})
		require.NoError(t, err)
		require.NotNil(t, deduction)
		assert.Equal(t, int64(49995), deduction.RemainingValue)
	})

	t.Run("other users are untouched", func(t *testing.T) {
		f := newCouponFixture(t)
		_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
		require.NoError(t, err)

		deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: "someone-else", UsedValue: 5})
		require.NoError(t, err)
		assert.Nil(t, deduction)

		active, err := f.svc.Validate(ctx, f.userID())
		require.NoError(t, err)
		assert.Equal(t, int64(50000), active.Balance)
	})
}

func TestCouponService_IdempotentReplay(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	request := &UpdateValueRequest{UserID: f.userID(), UsedValue: 20000, IdempotencyKey: "order-1"}
	first, err := f.svc.UpdateValue(ctx, request)
	require.NoError(t, err)

	second, err := f.svc.UpdateValue(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	active, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), active.Balance, "retry must not deduct twice")

	// The same key from another user is a separate request.
	other := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, f.users.Create(ctx, other))
	deduction, err := f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: other.ID.Hex(), UsedValue: 1, IdempotencyKey: "order-1"})
	require.NoError(t, err)
	assert.Nil(t, deduction)
}

func TestCouponService_IdempotentReplayOfEmptyResult(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	request := &UpdateValueRequest{UserID: f.userID(), UsedValue: 10, IdempotencyKey: "k"}
	deduction, err := f.svc.UpdateValue(ctx, request)
	require.NoError(t, err)
	assert.Nil(t, deduction)

	// A coupon activated later must not be charged by a replayed key.
	_, err = f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	deduction, err = f.svc.UpdateValue(ctx, request)
	require.NoError(t, err)
	assert.Nil(t, deduction)

	active, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	assert.Equal(t, int64(50000), active.Balance)
}

func TestCouponService_IdempotencyInFlightConflict(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	reserved, ok, err := f.svc.idempotency.Reserve(ctx, f.userID(), "busy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, reserved)

	_, err = f.svc.UpdateValue(ctx, &UpdateValueRequest{UserID: f.userID(), UsedValue: 1, IdempotencyKey: "busy"})
	requireKind(t, err, KindConflict)
}

func TestCouponService_IdempotencyReleasedOnFailure(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	request := &UpdateValueRequest{UserID: f.userID(), UsedValue: 100, IdempotencyKey: "retry-me"}

	f.coupons.deductErr = errors.New("write concern timeout")
	_, err = f.svc.UpdateValue(ctx, request)
	requireKind(t, err, KindInternal)

	f.coupons.deductErr = nil
	deduction, err := f.svc.UpdateValue(ctx, request)
	require.NoError(t, err)
	require.NotNil(t, deduction)
	assert.Equal(t, int64(49900), deduction.RemainingValue)
}

func TestCouponService_IdempotencyKeyTooLong(t *testing.T) {
	f := newCouponFixture(t)
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'k'
	}

	_, err := f.svc.UpdateValue(context.Background(), &UpdateValueRequest{UserID: f.userID(), IdempotencyKey: string(long)})
	requireKind(t, err, KindInvalidInput)
}

func TestCouponService_ValidateIsReadOnly(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	active, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = f.svc.Activate(ctx, f.userID(), "SAVE50K")
	require.NoError(t, err)

	first, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	second, err := f.svc.Validate(ctx, f.userID())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = f.svc.Validate(ctx, "")
	requireKind(t, err, KindUnauthenticated)
}

func TestCouponService_CodeAdministration(t *testing.T) {
	f := newCouponFixture(t)
	ctx := context.Background()

	code, err := f.svc.CreateCode(ctx, " WELCOME10 ", true)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", code.Code)

	_, err = f.svc.CreateCode(ctx, "WELCOME10", true)
	requireKind(t, err, KindConflict)

	_, err = f.svc.CreateCode(ctx, "a", true)
	requireKind(t, err, KindInvalidInput)

	updated, err := f.svc.SetCodeValidity(ctx, "WELCOME10", false)
	require.NoError(t, err)
	assert.False(t, updated.IsValid)

	_, err = f.svc.Activate(ctx, f.userID(), "WELCOME10")
	requireKind(t, err, KindInvalidInput)

	_, err = f.svc.SetCodeValidity(ctx, "MISSING", true)
	requireKind(t, err, KindNotFound)
}
