package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"materiaux-pro/internal/server/middleware"
	"materiaux-pro/internal/service"
	"materiaux-pro/internal/storage"
)

type ProductHandler struct {
	catalog *service.CatalogService
}

func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	SupplierID  *int64  `json:"supplier_id,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

type ListProductsQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"`
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query: "+err.Error()))
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("products", products, gin.H{
		"page":  query.Page,
		"limit": query.Limit,
	}))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("product", product))
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	products, err := h.catalog.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("search results", products))
}

// FilterProducts reads its conjunctive clauses from the query string:
// categories/suppliers are comma-separated id lists, min_price/max_price
// decimal strings, in_stock a boolean flag.
func (h *ProductHandler) FilterProducts(c *gin.Context) {
	var filter storage.ProductFilter
	var err error

	if filter.CategoryIDs, err = parseIDList(c.Query("categories")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid categories"))
		return
	}
	if filter.SupplierIDs, err = parseIDList(c.Query("suppliers")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid suppliers"))
		return
	}
	if filter.MinPrice, err = parsePrice(c.Query("min_price")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid min_price"))
		return
	}
	if filter.MaxPrice, err = parsePrice(c.Query("max_price")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid max_price"))
		return
	}
	filter.InStock = c.Query("in_stock") == "true"

	products, err := h.catalog.FilterProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("filtered products", products))
}

func (h *ProductHandler) SupplierProducts(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	lowStock := c.Query("low_stock") == "true"
	products, err := h.catalog.SupplierProducts(c.Request.Context(), identity, lowStock)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("supplier products", products))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid price"))
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), identity, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("product created", product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid price"))
			return
		}
		input.Price = &price
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), identity, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("product updated", product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("product deleted", nil))
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &price, nil
}
