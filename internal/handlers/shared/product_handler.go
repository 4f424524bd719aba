package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/utils"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// CreateProduct accepts a multipart form: product fields, an optional
// "image" file and "measurementImages" matched to measurements by position.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	input, image, measurementImages, ok := h.parseProductForm(c)
	if !ok {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), input, image, measurementImages)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := models.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	products, total, err := h.productService.List(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, products, utils.CreatePaginationMeta(params, total))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	input, image, measurementImages, ok := h.parseProductForm(c)
	if !ok {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), input, image, measurementImages)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, utils.MessageBody{Message: "Product deleted successfully"})
}

func (h *ProductHandler) parseProductForm(c *gin.Context) (*services.ProductInput, *services.Upload, []*services.Upload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form")
		return nil, nil, nil, false
	}

	input := &services.ProductInput{
		Name:             c.PostForm("name"),
		Description:      c.PostForm("description"),
		Category:         c.PostForm("category"),
		ExistingImageURL: c.PostForm("existingImageUrl"),
	}

	if input.Price, err = parseInt64Field(c.PostForm("price")); err != nil {
		utils.BadRequestResponse(c, "price must be a whole number")
		return nil, nil, nil, false
	}
	stock, err := parseInt64Field(c.PostForm("stock"))
	if err != nil {
		utils.BadRequestResponse(c, "stock must be a whole number")
		return nil, nil, nil, false
	}
	input.Stock = int(stock)

	if raw := strings.TrimSpace(c.PostForm("measurements")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Measurements); err != nil {
			utils.BadRequestResponse(c, "measurements must be a JSON array")
			return nil, nil, nil, false
		}
	}

	var image *services.Upload
	if files := form.File["image"]; len(files) > 0 {
		if image, err = readUpload(files[0]); err != nil {
			utils.BadRequestResponse(c, err.Error())
			return nil, nil, nil, false
		}
	}

	measurementFiles := form.File["measurementImages"]
	if len(measurementFiles) == 0 {
		measurementFiles = form.File["measurementImages[]"]
	}
	measurementImages := make([]*services.Upload, 0, len(measurementFiles))
	for _, fh := range measurementFiles {
		upload, err := readUpload(fh)
		if err != nil {
			utils.BadRequestResponse(c, err.Error())
			return nil, nil, nil, false
		}
		measurementImages = append(measurementImages, upload)
	}

	return input, image, measurementImages, true
}

func parseInt64Field(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

type uploadError string

func (e uploadError) Error() string { return string(e) }

func readUpload(fh *multipart.FileHeader) (*services.Upload, error) {
	if fh.Size > utils.MaxImageSize {
		return nil, uploadError("Uploaded image is too large")
	}

	file, err := fh.Open()
	if err != nil {
		return nil, uploadError("Unable to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, utils.MaxImageSize+1))
	if err != nil {
		return nil, uploadError("Unable to read uploaded file")
	}
	if len(content) > utils.MaxImageSize {
		return nil, uploadError("Uploaded image is too large")
	}

	return &services.Upload{Filename: fh.Filename, Content: content}, nil
}
