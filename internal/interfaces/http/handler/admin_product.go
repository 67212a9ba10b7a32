package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sari-store/storefront/internal/application/admin"
	catalogapp "github.com/sari-store/storefront/internal/application/catalog"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// imageFormFields are the multipart fields that carry product images
var imageFormFields = []string{"images", "images[]"}

// ProductWriter is the catalog write path used by AdminProductHandler
type ProductWriter interface {
	CreateProduct(ctx context.Context, files []admin.ImageFile, in admin.ProductInput, onProgress admin.ProgressFunc) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, files []admin.ImageFile, in admin.ProductInput, onProgress admin.ProgressFunc) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// AdminProductHandler serves the authenticated product upload form
type AdminProductHandler struct {
	BaseHandler
	products ProductWriter
	progress *admin.ProgressTracker
	logger   *zap.Logger
}

// NewAdminProductHandler creates an admin product handler
func NewAdminProductHandler(products ProductWriter, progress *admin.ProgressTracker, logger *zap.Logger) *AdminProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminProductHandler{
		products: products,
		progress: progress,
		logger:   logger,
	}
}

// CreateProduct godoc
// @ID           createAdminProduct
// @Summary      Create a product
// @Description  Uploads every selected image, then stores the product. Nothing is stored when any upload fails. Poll /admin/uploads/{uploadId} with the X-Upload-ID sent here to follow progress.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Upload-ID header   string true  "Client chosen upload id"
// @Param        title       formData string true  "Title"
// @Param        price       formData string false "Price, digits and at most one dot; blank means price on request"
// @Param        category    formData string false "Existing category"
// @Param        newCategory formData string false "New category; wins over category"
// @Param        images      formData file   true  "Product images in display order"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *AdminProductHandler) CreateProduct(c *gin.Context) {
	files, input, ok := h.readForm(c)
	if !ok {
		return
	}
	defer closeFiles(files)

	uploadID := h.startUpload(c)
	product, err := h.products.CreateProduct(c.Request.Context(), imageFiles(files), input, h.progress.Reporter(uploadID))
	h.progress.Finish(uploadID, err)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, catalogapp.ToProductResponse(*product))
}

// UpdateProduct godoc
// @ID           updateAdminProduct
// @Summary      Edit a product
// @Description  Same form as create. Images are replaced only when new files are sent.
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        id          path     string true  "Product ID"
// @Param        X-Upload-ID header   string false "Client chosen upload id"
// @Param        title       formData string true  "Title"
// @Param        price       formData string false "Price"
// @Param        category    formData string false "Existing category"
// @Param        newCategory formData string false "New category"
// @Param        images      formData file   false "Replacement images"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *AdminProductHandler) UpdateProduct(c *gin.Context) {
	files, input, ok := h.readForm(c)
	if !ok {
		return
	}
	defer closeFiles(files)

	uploadID := h.startUpload(c)
	product, err := h.products.UpdateProduct(c.Request.Context(), c.Param("id"), imageFiles(files), input, h.progress.Reporter(uploadID))
	h.progress.Finish(uploadID, err)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, catalogapp.ToProductResponse(*product))
}

// DeleteProduct godoc
// @ID           deleteAdminProduct
// @Summary      Delete a product
// @Tags         admin
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *AdminProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetUploadProgress godoc
// @ID           getAdminUploadProgress
// @Summary      Upload progress
// @Description  Percentage of the image bytes sent for a running or recently finished upload
// @Tags         admin
// @Produce      json
// @Param        uploadId path string true "Upload ID"
// @Success      200 {object} APIResponse[admin.UploadProgress]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/uploads/{uploadId} [get]
func (h *AdminProductHandler) GetUploadProgress(c *gin.Context) {
	progress, ok := h.progress.Get(c.Param("uploadId"))
	if !ok {
		h.ErrorWithCode(c, "UPLOAD_NOT_FOUND", "Upload not found or expired")
		return
	}
	h.Success(c, progress)
}

// uploadedFile is an opened multipart part
type uploadedFile struct {
	header *multipart.FileHeader
	body   multipart.File
}

// readForm binds the text fields and opens every image part. Requests that
// are not multipart carry no images.
func (h *AdminProductHandler) readForm(c *gin.Context) ([]uploadedFile, admin.ProductInput, bool) {
	var input admin.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return nil, input, false
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, input, true
		}
		h.logger.Warn("Failed to parse product form", zap.Error(err))
		h.BadRequest(c, "Invalid multipart form")
		return nil, input, false
	}

	var files []uploadedFile
	for _, field := range imageFormFields {
		for _, fh := range form.File[field] {
			body, err := fh.Open()
			if err != nil {
				closeFiles(files)
				h.logger.Warn("Failed to open uploaded image", zap.String("filename", fh.Filename), zap.Error(err))
				h.Error(c, http.StatusBadRequest, "INVALID_IMAGE", "Could not read "+fh.Filename)
				return nil, input, false
			}
			files = append(files, uploadedFile{header: fh, body: body})
		}
	}
	return files, input, true
}

// startUpload registers the request's upload id with the tracker, minting
// one when the client sent none
func (h *AdminProductHandler) startUpload(c *gin.Context) string {
	id := c.GetHeader(middleware.UploadIDHeader)
	if id == "" || len(id) > maxClientIDLength {
		id = uuid.New().String()
	}
	c.Header(middleware.UploadIDHeader, id)
	h.progress.Start(id)
	return id
}

func imageFiles(files []uploadedFile) []admin.ImageFile {
	out := make([]admin.ImageFile, 0, len(files))
	for _, f := range files {
		out = append(out, admin.ImageFile{
			Name:        f.header.Filename,
			ContentType: f.header.Header.Get("Content-Type"),
			Size:        f.header.Size,
			Body:        f.body,
		})
	}
	return out
}

func closeFiles(files []uploadedFile) {
	for _, f := range files {
		_ = f.body.Close()
	}
}
