package services

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
	"storefront/pkg/cache"
	"storefront/pkg/oauth"
	"storefront/pkg/storage"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID.Hex()] = u
	}
	return r
}

func (r *fakeUserRepo) get(id string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return interfaces.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID.Hex()] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *fakeUserRepo) mutate(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) LinkGoogleAccount(_ context.Context, id, googleID, picture string) error {
	return r.mutate(id, func(u *models.User) {
		u.GoogleID = googleID
		u.ProfilePicture = picture
		u.IsEmailVerified = true
	})
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *models.User) { u.Password = hash })
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *models.User) { u.IsEmailVerified = true })
}

func (r *fakeUserRepo) AddToWishlist(_ context.Context, id, productID string) (bool, error) {
	pid, _ := primitive.ObjectIDFromHex(productID)
	added := false
	err := r.mutate(id, func(u *models.User) {
		for _, w := range u.Wishlist {
			if w == pid {
				return
			}
		}
		u.Wishlist = append(u.Wishlist, pid)
		added = true
	})
	return added, err
}

func (r *fakeUserRepo) PushRecentlyViewed(_ context.Context, id, productID string, limit int) error {
	pid, _ := primitive.ObjectIDFromHex(productID)
	return r.mutate(id, func(u *models.User) {
		list := []primitive.ObjectID{pid}
		for _, v := range u.RecentlyViewed {
			if v != pid {
				list = append(list, v)
			}
		}
		if len(list) > limit {
			list = list[:limit]
		}
		u.RecentlyViewed = list
	})
}

func (r *fakeUserRepo) AppendPurchase(_ context.Context, id, orderID string) error {
	return r.mutate(id, func(u *models.User) { u.PurchaseHistory = append(u.PurchaseHistory, orderID) })
}

func (r *fakeUserRepo) UpdateAddress(_ context.Context, id string, address *models.Address) error {
	return r.mutate(id, func(u *models.User) { u.Address = address })
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*models.CouponCode
}

func newFakeCodeRepo(codes ...*models.CouponCode) *fakeCodeRepo {
	r := &fakeCodeRepo{codes: map[string]*models.CouponCode{}}
	for _, c := range codes {
		r.codes[c.Code] = c
	}
	return r
}

func (r *fakeCodeRepo) GetByCode(_ context.Context, code string) (*models.CouponCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCodeRepo) Create(_ context.Context, code *models.CouponCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; ok {
		return interfaces.ErrDuplicateKey
	}
	r.codes[code.Code] = code
	return nil
}

func (r *fakeCodeRepo) SetValidity(_ context.Context, code string, valid bool) (*models.CouponCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c.IsValid = valid
	cp := *c
	return &cp, nil
}

// fakeCouponRepo mirrors the ledger's guarantees: at most one valid coupon
// per user and atomic clamped deductions.
type fakeCouponRepo struct {
	mu        sync.Mutex
	coupons   []*models.Coupon
	deductErr error
	// beforeCreate runs without the lock so tests can force interleavings.
	beforeCreate func()
}

func (r *fakeCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.UserID == coupon.UserID && c.IsValid {
			return interfaces.ErrDuplicateKey
		}
	}
	coupon.ID = primitive.NewObjectID()
	cp := *coupon
	r.coupons = append(r.coupons, &cp)
	return nil
}

func (r *fakeCouponRepo) GetActiveByUser(_ context.Context, userID string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.coupons) - 1; i >= 0; i-- {
		if c := r.coupons[i]; c.UserID == userID && c.IsValid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeCouponRepo) ListByUser(_ context.Context, userID string) ([]*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Coupon{}
	for i := len(r.coupons) - 1; i >= 0; i-- {
		if c := r.coupons[i]; c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCouponRepo) Deduct(_ context.Context, sel interfaces.CouponSelector, amount int64) (*models.Coupon, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deductErr != nil {
		return nil, 0, r.deductErr
	}
	for i := len(r.coupons) - 1; i >= 0; i-- {
		c := r.coupons[i]
		if c.UserID != sel.UserID || !c.IsValid || c.Balance <= 0 {
			continue
		}
		if sel.CouponID != "" && c.CouponID != sel.CouponID {
			continue
		}
		if sel.Code != "" && c.Code != sel.Code {
			continue
		}
		taken := amount
		if taken > c.Balance {
			taken = c.Balance
		}
		c.Balance -= taken
		c.IsValid = c.Balance > 0
		cp := *c
		return &cp, taken, nil
	}
	return nil, 0, interfaces.ErrNotFound
}

func (r *fakeCouponRepo) validCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.coupons {
		if c.UserID == userID && c.IsValid {
			n++
		}
	}
	return n
}

// fakeCache stores JSON like the Redis cache does.
type fakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
	err    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	data, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.values[key] = data
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *fakeCache) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if data, ok := c.values[key]; ok {
		_ = json.Unmarshal(data, &n)
	}
	n++
	c.values[key], _ = json.Marshal(n)
	return n, nil
}

type sentEmail struct {
	To, Subject, Body string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (e *fakeEmail) SendEmail(_ context.Context, to, subject, body string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// tokenFrom extracts the trailing path segment of the link in the last email.
func (e *fakeEmail) tokenFrom(marker string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.sent) == 0 {
		return ""
	}
	body := e.sent[len(e.sent)-1].Body
	i := strings.Index(body, marker)
	if i < 0 {
		return ""
	}
	return strings.Fields(body[i+len(marker):])[0]
}

type fakeOAuth struct {
	users    map[string]*oauth.UserInfo
	codes    map[string]string
	exchange error
}

func (f *fakeOAuth) GetAuthURL(state string) string { return "https://accounts.example.com/auth?state=" + state }

func (f *fakeOAuth) ExchangeCode(_ context.Context, code string) (*oauth.TokenResponse, error) {
	if f.exchange != nil {
		return nil, f.exchange
	}
	token, ok := f.codes[code]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &oauth.TokenResponse{AccessToken: token, TokenType: "Bearer"}, nil
}

func (f *fakeOAuth) GetUserInfo(_ context.Context, accessToken string) (*oauth.UserInfo, error) {
	info, ok := f.users[accessToken]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return info, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, req *storage.UploadRequest) (*storage.UploadResponse, error) {
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[req.Key] = data
	return &storage.UploadResponse{Key: req.Key, URL: s.PublicURL(req.Key), Size: int64(len(data))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return storage.ErrFileNotFound
	}
	delete(s.objects, key)
	return nil
}


func (s *fakeStorage) PublicURL(key string) string {
	return "/uploads/" + key
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	r.products[p.ID.Hex()] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Replace(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID.Hex()]; !ok {
		return interfaces.ErrNotFound
	}
	cp := *p
	r.products[p.ID.Hex()] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	delete(r.products, id)
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Product{}
	for _, p := range r.products {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}
