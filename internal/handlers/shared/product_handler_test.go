package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/utils"
)

type stubProductService struct {
	services.ProductService
	input             *services.ProductInput
	image             *services.Upload
	measurementImages []*services.Upload
	listed            *utils.PaginationParams
	filter            models.ProductFilter
}

func (s *stubProductService) Create(_ context.Context, input *services.ProductInput, image *services.Upload, measurementImages []*services.Upload) (*models.Product, error) {
	s.input, s.image, s.measurementImages = input, image, measurementImages
	return &models.Product{ID: primitive.NewObjectID(), Name: input.Name, Price: input.Price}, nil
}

func (s *stubProductService) List(_ context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error) {
	s.filter, s.listed = filter, params
	return []*models.Product{{Name: "Hat"}}, 41, nil
}

func (s *stubProductService) Get(_ context.Context, id string) (*models.Product, error) {
	return nil, &services.Error{Kind: services.KindNotFound, Message: "Product not found"}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("content of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProductHandler_CreateParsesForm(t *testing.T) {
	svc := &stubProductService{}
	h := NewProductHandler(svc)
	router := gin.New()
	router.POST("/api/products", h.CreateProduct)

	body, contentType := multipartBody(t, map[string]string{
		"name":         "Jacket",
		"price":        "129900",
		"stock":        "4",
		"measurements": `[{"label":"Chest","value":"100","unit":"cm"},{"label":"Sleeve","value":"60"}]`,
	}, map[string][]string{
		"image":             {"front.png"},
		"measurementImages": {"chest.png", "sleeve.png"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(129900), svc.input.Price)
	assert.Equal(t, 4, svc.input.Stock)
	require.Len(t, svc.input.Measurements, 2)
	assert.Equal(t, "cm", svc.input.Measurements[0].Unit)
	assert.Equal(t, "front.png", svc.image.Filename)
	require.Len(t, svc.measurementImages, 2)
	assert.Equal(t, "content of sleeve.png", string(svc.measurementImages[1].Content))
}

func TestProductHandler_CreateRejectsBadFields(t *testing.T) {
	h := NewProductHandler(&stubProductService{})
	router := gin.New()
	router.POST("/api/products", h.CreateProduct)

	for _, fields := range []map[string]string{
		{"name": "Hat", "price": "12.50"},
		{"name": "Hat", "stock": "many"},
		{"name": "Hat", "measurements": "{not json"},
	} {
		body, contentType := multipartBody(t, fields, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "fields %v", fields)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte(`{"name":"Hat"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_ListAndGet(t *testing.T) {
	svc := &stubProductService{}
	h := NewProductHandler(svc)
	router := gin.New()
	router.GET("/api/products", h.GetProducts)
	router.GET("/api/products/:id", h.GetProduct)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?category=hats&page=2&page_size=20", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hats", svc.filter.Category)

	pagination := decode(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(41), pagination["total"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w)["message"])
}
