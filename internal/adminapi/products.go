package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type productPayload struct {
	CategoryId    int64            `json:"category_id,string" validate:"required"`
	Title         string           `json:"title" validate:"required,min=1,max=200"`
	Slug          string           `json:"slug"`
	Sku           string           `json:"sku" validate:"required,min=1,max=64"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Material      string           `json:"material"`
	Weight        decimal.Decimal  `json:"weight"`
	Stock         int              `json:"stock"`
	IsLimited     bool             `json:"is_limited"`
	IsActive      *bool            `json:"is_active"`
	ImageUrl      string           `json:"image_url"`
}

type productImagePayload struct {
	ImageUrl  string `json:"image_url" validate:"required"`
	IsPrimary bool   `json:"is_primary"`
}

type productVariantPayload struct {
	VariantName  string           `json:"variant_name" validate:"required,min=1,max=128"`
	VariantValue string           `json:"variant_value" validate:"required,min=1,max=128"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listAdminProducts)
	webserver.ApiGET("/products/:id", getAdminProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiPOST("/products/:id/images", addProductImage)
	webserver.ApiDELETE("/products/:id/images/:image_id", deleteProductImage)
	webserver.ApiPOST("/products/:id/variants", addProductVariant)
	webserver.ApiPUT("/products/:id/variants/:variant_id", updateProductVariant)
	webserver.ApiDELETE("/products/:id/variants/:variant_id", deleteProductVariant)
}

func listAdminProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"title":      "title",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okSort := allowed[sortField]
	if !okSort {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("title ILIKE ? OR sku ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			lq := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(sku) LIKE ?", lq, lq)
		}
	}
	if cid := c.QueryParam("category_id"); cid != "" {
		db = db.Where("category_id = ?", cid)
	}
	if c.QueryParam("low_stock") == "true" {
		threshold := GetSettings(c).GetInt("checkout", "low_stock_threshold")
		if threshold <= 0 {
			threshold = 5
		}
		db = db.Where("stock <= ?", threshold)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getAdminProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	var images []domain.ProductImage
	GetDB(c).Where("product_id = ?", p.ID).Order("is_primary DESC, id ASC").Find(&images)
	var variants []domain.ProductVariant
	GetDB(c).Where("product_id = ?", p.ID).Order("id ASC").Find(&variants)
	return ok(c, map[string]interface{}{
		"product":  p,
		"images":   images,
		"variants": variants,
	})
}

func validateProductPayload(payload *productPayload) (code, msg string) {
	if payload.Price.IsNegative() {
		return "INVALID_REQUEST", "Price must not be negative"
	}
	if payload.DiscountPrice != nil {
		if payload.DiscountPrice.IsNegative() {
			return "INVALID_REQUEST", "Discount price must not be negative"
		}
		if payload.DiscountPrice.GreaterThan(payload.Price) {
			return "INVALID_REQUEST", "Discount price must not exceed price"
		}
	}
	if payload.Stock < 0 {
		return "INVALID_REQUEST", "Stock must not be negative"
	}
	return "", ""
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if code, msg := validateProductPayload(&payload); code != "" {
		return fail(c, http.StatusBadRequest, code, msg, nil)
	}

	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Title)
	}
	var count int64
	GetDB(c).Model(&domain.Product{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SLUG_EXISTS", "Product slug already in use", nil)
	}
	GetDB(c).Model(&domain.Product{}).Where("sku = ?", payload.Sku).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SKU_EXISTS", "Product SKU already in use", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", payload.CategoryId).First(&cat).Error; err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category not found", nil)
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	now := time.Now()
	p := domain.Product{
		ID:            common.UUIDint64(),
		CategoryId:    payload.CategoryId,
		Title:         strings.TrimSpace(payload.Title),
		Slug:          slug,
		Sku:           strings.TrimSpace(payload.Sku),
		Description:   payload.Description,
		Price:         payload.Price,
		DiscountPrice: payload.DiscountPrice,
		Material:      payload.Material,
		Weight:        payload.Weight,
		Stock:         payload.Stock,
		IsLimited:     payload.IsLimited,
		IsActive:      active,
		ImageUrl:      strings.TrimSpace(payload.ImageUrl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	addOprLog(c, "product:create", fmt.Sprintf("created product %s (%d)", p.Title, p.ID))
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if code, msg := validateProductPayload(&payload); code != "" {
		return fail(c, http.StatusBadRequest, code, msg, nil)
	}

	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Title)
	}
	var count int64
	GetDB(c).Model(&domain.Product{}).Where("slug = ? AND id <> ?", slug, id).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SLUG_EXISTS", "Product slug already in use", nil)
	}
	GetDB(c).Model(&domain.Product{}).Where("sku = ? AND id <> ?", payload.Sku, id).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SKU_EXISTS", "Product SKU already in use", nil)
	}

	p.CategoryId = payload.CategoryId
	p.Title = strings.TrimSpace(payload.Title)
	p.Slug = slug
	p.Sku = strings.TrimSpace(payload.Sku)
	p.Description = payload.Description
	p.Price = payload.Price
	p.DiscountPrice = payload.DiscountPrice
	p.Material = payload.Material
	p.Weight = payload.Weight
	p.Stock = payload.Stock
	p.IsLimited = payload.IsLimited
	if payload.IsActive != nil {
		p.IsActive = *payload.IsActive
	}
	p.ImageUrl = strings.TrimSpace(payload.ImageUrl)
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	addOprLog(c, "product:update", fmt.Sprintf("updated product %s (%d)", p.Title, p.ID))
	return ok(c, p)
}

// deleteProduct refuses to remove a product referenced by order history;
// deactivate it instead
func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var inUse int64
	GetDB(c).Model(&domain.OrderItem{}).Where("product_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "PRODUCT_IN_USE", "Product is referenced by orders, deactivate it instead", nil)
	}
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	addOprLog(c, "product:delete", fmt.Sprintf("deleted product %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func addProductImage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	var payload productImagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.IsPrimary {
		GetDB(c).Model(&domain.ProductImage{}).Where("product_id = ?", id).Update("is_primary", false)
	}
	img := domain.ProductImage{
		ID:        common.UUIDint64(),
		ProductId: id,
		ImageUrl:  strings.TrimSpace(payload.ImageUrl),
		IsPrimary: payload.IsPrimary,
	}
	if err := GetDB(c).Create(&img).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create image", err.Error())
	}
	return ok(c, img)
}

func deleteProductImage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	imageID, err := parseIDParam(c, "image_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid image ID", nil)
	}
	if err := GetDB(c).Where("id = ? AND product_id = ?", imageID, id).
		Delete(&domain.ProductImage{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete image", err.Error())
	}
	return ok(c, map[string]interface{}{"id": imageID})
}

func addProductVariant(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	var payload productVariantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variant", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Price != nil && payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}
	if payload.Stock != nil && *payload.Stock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must not be negative", nil)
	}
	v := domain.ProductVariant{
		ID:           common.UUIDint64(),
		ProductId:    id,
		VariantName:  strings.TrimSpace(payload.VariantName),
		VariantValue: strings.TrimSpace(payload.VariantValue),
		Price:        payload.Price,
		Stock:        payload.Stock,
	}
	if err := GetDB(c).Create(&v).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create variant", err.Error())
	}
	return ok(c, v)
}

func updateProductVariant(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	variantID, err := parseIDParam(c, "variant_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid variant ID", nil)
	}
	var v domain.ProductVariant
	if err := GetDB(c).Where("id = ? AND product_id = ?", variantID, id).First(&v).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Variant not found", nil)
	}
	var payload productVariantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variant", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Price != nil && payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}
	if payload.Stock != nil && *payload.Stock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must not be negative", nil)
	}

	v.VariantName = strings.TrimSpace(payload.VariantName)
	v.VariantValue = strings.TrimSpace(payload.VariantValue)
	v.Price = payload.Price
	v.Stock = payload.Stock

	if err := GetDB(c).Save(&v).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update variant", err.Error())
	}
	return ok(c, v)
}

func deleteProductVariant(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	variantID, err := parseIDParam(c, "variant_id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid variant ID", nil)
	}
	if err := GetDB(c).Where("id = ? AND product_id = ?", variantID, id).
		Delete(&domain.ProductVariant{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete variant", err.Error())
	}
	return ok(c, map[string]interface{}{"id": variantID})
}
