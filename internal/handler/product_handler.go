package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"portal/internal/apperr"
	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductEnvelope struct {
	Product *service.FullProductView `json:"product"`
}

type CategoryList struct {
	Categories []model.ProductCategory `json:"categories"`
}

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	managers := middleware.RequireRole(rbac.ProductManagers)

	products := router.Group("/products")
	{
		products.GET("", middleware.RejectInvalidToken(), h.ListProducts)
		products.GET("/categories", h.ListCategories)
		products.POST("/categories", managers, h.CreateCategory)
		products.GET("/:id", middleware.RequireAuth(), h.GetProduct)
		products.POST("", managers, h.CreateProduct)
		products.PUT("/:id", managers, h.UpdateProduct)
		products.DELETE("/:id", managers, h.DeleteProduct)
	}
}

// ListProducts handles GET /products
// @Summary      List products
// @Description  Anonymous callers get name, short description, image and category only.
// @Description  Authenticated callers also get description, price and stock.
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Category slug"
// @Param        search    query     string  false  "Substring of name or description"
// @Param        status    query     string  false  "Managers only: a status or 'all'"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Param        offset    query     int     false  "Rows to skip"
// @Success      200       {object}  service.ProductList
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	res, err := h.productService.List(c.Request.Context(), middleware.PrincipalFrom(c), service.ProductListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Params:   pagination.Parse(c, pagination.CatalogLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetProduct handles GET /products/:id
// @Summary      Get product details
// @Description  Requires login. Anonymous callers get 401 whether or not the product exists.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  handler.ProductEnvelope
// @Failure      401  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "Product not found")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ProductEnvelope{Product: product})
}

// bindProduct reads the product fields from JSON or a multipart form, plus the optional image part.
func bindProduct(c *gin.Context) (service.ProductInput, *multipart.FileHeader, bool) {
	var in service.ProductInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, "Name and price are required", err)
		return in, nil, false
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, true
	}
	image, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		c.Error(apperr.Wrap(apperr.KindValidation, "Invalid image upload", err))
		return in, nil, false
	}
	return in, image, true
}

// CreateProduct handles POST /products
// @Summary      Create a product
// @Description  Accepts JSON or multipart/form-data with an optional image part (image/*, max 5MB)
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ProductInput  true   "Product"
// @Param        image    formData  file                  false  "Product image"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      403      {object}  response.Body
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	in, image, ok := bindProduct(c)
	if !ok {
		return
	}

	id, err := h.productService.Create(c.Request.Context(), middleware.PrincipalFrom(c), in, image)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "Product created successfully", ID: id})
}

// UpdateProduct handles PUT /products/:id
// @Summary      Replace a product
// @Description  Full replace. A new image supersedes the stored one.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true   "Product ID"
// @Param        payload  body      service.ProductInput  true   "Product"
// @Param        image    formData  file                  false  "Product image"
// @Success      200      {object}  response.Body
// @Failure      400      {object}  response.Body
// @Failure      404      {object}  response.Body
// @Router       /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "Product not found")
	if !ok {
		return
	}

	in, image, ok := bindProduct(c)
	if !ok {
		return
	}

	if err := h.productService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, in, image); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Product updated successfully"))
}

// DeleteProduct handles DELETE /products/:id
// @Summary      Soft delete a product
// @Description  Stored images are kept until the purge job runs past the retention window
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "Product not found")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Product deleted successfully"))
}

// ListCategories handles GET /products/categories
// @Summary      List product categories
// @Tags         products
// @Produce      json
// @Success      200  {object}  handler.CategoryList
// @Router       /products/categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, CategoryList{Categories: categories})
}

// CreateCategory handles POST /products/categories
// @Summary      Create a product category
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CategoryInput  true  "Category"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Router       /products/categories [post]
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, "Name and slug are required", err)
		return
	}

	id, err := h.productService.CreateCategory(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "Category created successfully", ID: id})
}
