package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-faster/errors"

	"storefront/internal/models"
	"storefront/internal/repositories/interfaces"
	"storefront/internal/utils"
	"storefront/pkg/logger"
	"storefront/pkg/storage"
)

const productImageFolder = "products"

type ProductService interface {
	Create(ctx context.Context, input *ProductInput, image *Upload, measurementImages []*Upload) (*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error)
	Update(ctx context.Context, id string, input *ProductInput, image *Upload, measurementImages []*Upload) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductInput struct {
	Name             string               `json:"name" validate:"required"`
	Description      string               `json:"description"`
	Category         string               `json:"category"`
	Price            int64                `json:"price" validate:"gte=0"`
	Stock            int                  `json:"stock" validate:"gte=0"`
	Measurements     []models.Measurement `json:"measurements"`
	ExistingImageURL string               `json:"existingImageUrl"`
}

// Upload is an image received with a product form. Measurement images are
// matched to measurements by position.
type Upload struct {
	Filename string
	Content  []byte
}

type productService struct {
	productRepo interfaces.ProductRepository
	storage     storage.StorageProvider
	maxWidth    uint
	logger      *logger.Logger
}

func NewProductService(productRepo interfaces.ProductRepository, storage storage.StorageProvider, maxWidth uint, logger *logger.Logger) ProductService {
	if maxWidth == 0 {
		maxWidth = utils.ProductImageWidth
	}
	return &productService{
		productRepo: productRepo,
		storage:     storage,
		maxWidth:    maxWidth,
		logger:      logger,
	}
}

func (s *productService) Create(ctx context.Context, input *ProductInput, image *Upload, measurementImages []*Upload) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	var stored []string
	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Category:     strings.TrimSpace(input.Category),
		Price:        input.Price,
		Stock:        input.Stock,
		Measurements: make([]models.Measurement, len(input.Measurements)),
	}

	if image != nil {
		key, url, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		stored = append(stored, key)
		product.ImageKey, product.ImageURL = key, url
	}

	for i, m := range input.Measurements {
		m.ImageURL, m.ImageKey, m.ExistingImageURL = "", "", ""
		if i < len(measurementImages) && measurementImages[i] != nil {
			key, url, err := s.storeImage(ctx, measurementImages[i])
			if err != nil {
				s.cleanup(ctx, stored)
				return nil, err
			}
			stored = append(stored, key)
			m.ImageKey, m.ImageURL = key, url
		}
		product.Measurements[i] = m
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.cleanup(ctx, stored)
		return nil, s.internal(ctx, err, "create product")
	}

	s.logger.WithContext(ctx).WithField("product_id", product.ID.Hex()).Info("Product created")

	return product, nil
}

func (s *productService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(KindNotFound, utils.ErrProductNotFound)
		}
		return nil, s.internal(ctx, err, "get product")
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filter models.ProductFilter, params *utils.PaginationParams) ([]*models.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, s.internal(ctx, err, "list products")
	}
	return products, total, nil
}

// Update replaces the product's fields. An image is kept only when the form
// names it in existingImageUrl; otherwise it is replaced by the upload or
// cleared.
func (s *productService) Update(ctx context.Context, id string, input *ProductInput, image *Upload, measurementImages []*Upload) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	keptKeys := map[string]bool{}
	var stored []string

	updated := *current
	updated.Name = strings.TrimSpace(input.Name)
	updated.Description = input.Description
	updated.Category = strings.TrimSpace(input.Category)
	updated.Price = input.Price
	updated.Stock = input.Stock

	switch {
	case image != nil:
		key, url, err := s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		stored = append(stored, key)
		updated.ImageKey, updated.ImageURL = key, url
	case input.ExistingImageURL != "" && input.ExistingImageURL == current.ImageURL:
		keptKeys[current.ImageKey] = true
	default:
		updated.ImageKey, updated.ImageURL = "", input.ExistingImageURL
	}

	previous := map[string]string{}
	for _, m := range current.Measurements {
		if m.ImageURL != "" {
			previous[m.ImageURL] = m.ImageKey
		}
	}

	updated.Measurements = make([]models.Measurement, len(input.Measurements))
	for i, m := range input.Measurements {
		existing := m.ExistingImageURL
		m.ImageURL, m.ImageKey, m.ExistingImageURL = "", "", ""

		if i < len(measurementImages) && measurementImages[i] != nil {
			key, url, err := s.storeImage(ctx, measurementImages[i])
			if err != nil {
				s.cleanup(ctx, stored)
				return nil, err
			}
			stored = append(stored, key)
			m.ImageKey, m.ImageURL = key, url
		} else if existing != "" {
			m.ImageURL = existing
			if key, ok := previous[existing]; ok {
				m.ImageKey = key
				keptKeys[key] = true
			}
		}
		updated.Measurements[i] = m
	}

	if err := s.productRepo.Replace(ctx, &updated); err != nil {
		s.cleanup(ctx, stored)
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(KindNotFound, utils.ErrProductNotFound)
		}
		return nil, s.internal(ctx, err, "update product")
	}

	var orphaned []string
	for _, key := range imageKeys(current) {
		if !keptKeys[key] {
			orphaned = append(orphaned, key)
		}
	}
	s.cleanup(ctx, orphaned)

	return &updated, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newError(KindNotFound, utils.ErrProductNotFound)
		}
		return s.internal(ctx, err, "delete product")
	}

	s.cleanup(ctx, imageKeys(product))

	s.logger.WithContext(ctx).WithField("product_id", id).Info("Product deleted")

	return nil
}

func (s *productService) storeImage(ctx context.Context, upload *Upload) (string, string, error) {
	if !utils.IsImageFile(upload.Filename) {
		return "", "", newError(KindInvalidInput, "Only image uploads are allowed")
	}
	if len(upload.Content) == 0 {
		return "", "", newError(KindInvalidInput, "Uploaded image is empty")
	}
	if len(upload.Content) > utils.MaxImageSize {
		return "", "", newError(KindInvalidInput, "Uploaded image is too large")
	}

	content := upload.Content
	if utils.GetFileExtension(upload.Filename) != ".webp" {
		fitted, _, err := utils.FitImage(content, s.maxWidth)
		if err != nil {
			return "", "", newError(KindInvalidInput, "Uploaded file is not a valid image")
		}
		content = fitted
	}

	key := utils.GenerateObjectKey(productImageFolder, upload.Filename)
	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       bytes.NewReader(content),
		ContentType:  utils.GetContentType(upload.Filename),
		Size:         int64(len(content)),
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", "", s.internal(ctx, err, "store product image")
	}

	return resp.Key, resp.URL, nil
}

func (s *productService) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			s.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("Failed to delete product image")
		}
	}
}

func (s *productService) internal(ctx context.Context, err error, action string) error {
	s.logger.WithContext(ctx).WithError(err).WithField("action", action).Error("Product operation failed")
	return internalError(err, action)
}

func validateProductInput(input *ProductInput) error {
	if input == nil {
		return newError(KindInvalidInput, utils.ErrInvalidInput)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return newError(KindInvalidInput, utils.ValidationMessage(err))
	}
	return nil
}

func imageKeys(p *models.Product) []string {
	keys := []string{p.ImageKey}
	for _, m := range p.Measurements {
		keys = append(keys, m.ImageKey)
	}
	return keys
}
