package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/utils"
)

const testSecret = "handler-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionToken(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, isAdmin, "", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// serve runs one request through a router with auth on every route.
func serve(t *testing.T, register func(r *gin.RouterGroup), method, path, token string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	authed := router.Group("")
	authed.Use(middleware.AuthRequired(testSecret))
	register(authed)
	return do(t, router, method, path, token, body, header)
}

func servePublic(t *testing.T, register func(r *gin.RouterGroup), method, path, token string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	register(&router.RouterGroup)
	return do(t, router, method, path, token, body, header)
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type stubCouponService struct {
	activate        func(ctx context.Context, userID, code string) (*models.Coupon, error)
	validate        func(ctx context.Context, userID string) (*models.Coupon, error)
	updateValue     func(ctx context.Context, request *services.UpdateValueRequest) (*models.Deduction, error)
	history         func(ctx context.Context, userID string) ([]*models.Coupon, error)
	createCode      func(ctx context.Context, code string, valid bool) (*models.CouponCode, error)
	setCodeValidity func(ctx context.Context, code string, valid bool) (*models.CouponCode, error)
}

func (s *stubCouponService) Activate(ctx context.Context, userID, code string) (*models.Coupon, error) {
	return s.activate(ctx, userID, code)
}

func (s *stubCouponService) Validate(ctx context.Context, userID string) (*models.Coupon, error) {
	return s.validate(ctx, userID)
}

func (s *stubCouponService) UpdateValue(ctx context.Context, request *services.UpdateValueRequest) (*models.Deduction, error) {
	return s.updateValue(ctx, request)
}

func (s *stubCouponService) History(ctx context.Context, userID string) ([]*models.Coupon, error) {
	return s.history(ctx, userID)
}

func (s *stubCouponService) CreateCode(ctx context.Context, code string, valid bool) (*models.CouponCode, error) {
	return s.createCode(ctx, code, valid)
}

func (s *stubCouponService) SetCodeValidity(ctx context.Context, code string, valid bool) (*models.CouponCode, error) {
	return s.setCodeValidity(ctx, code, valid)
}
