package storeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.PubGET("/categories", listCategories)
	webserver.PubGET("/products", searchProducts)
	webserver.PubGET("/products/:slug", getProductBySlug)
}

// categoryNode is a category with its children for hierarchical browsing
type categoryNode struct {
	domain.Category
	Children []categoryNode `json:"children"`
}

// listCategories returns the category tree, top level first
func listCategories(c echo.Context) error {
	var categories []domain.Category
	if err := GetDB(c).Order("sort ASC, id ASC").Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}

	byParent := make(map[int64][]domain.Category)
	for _, cat := range categories {
		byParent[cat.ParentId] = append(byParent[cat.ParentId], cat)
	}

	var build func(parentID int64) []categoryNode
	build = func(parentID int64) []categoryNode {
		nodes := make([]categoryNode, 0, len(byParent[parentID]))
		for _, cat := range byParent[parentID] {
			nodes = append(nodes, categoryNode{Category: cat, Children: build(cat.ID)})
		}
		return nodes
	}
	return ok(c, build(0))
}

// searchProducts lists active products with text search, category and range filters
func searchProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Product{}).Where("is_active = ?", true)

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("title ILIKE ? OR description ILIKE ? OR sku ILIKE ?", "%"+q+"%", "%"+q+"%", "%"+q+"%")
		} else {
			lq := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", lq, lq, lq)
		}
	}

	if slug := strings.TrimSpace(c.QueryParam("category")); slug != "" {
		var cat domain.Category
		if err := GetDB(c).Where("slug = ?", slug).First(&cat).Error; err != nil {
			return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
		}
		// include direct subcategories in the match
		var childIDs []int64
		GetDB(c).Model(&domain.Category{}).Where("parent_id = ?", cat.ID).Pluck("id", &childIDs)
		db = db.Where("category_id IN ?", append(childIDs, cat.ID))
	}

	if minStr := c.QueryParam("price_min"); minStr != "" {
		if min, err := decimal.NewFromString(minStr); err == nil {
			db = db.Where("price >= ?", min)
		}
	}
	if maxStr := c.QueryParam("price_max"); maxStr != "" {
		if max, err := decimal.NewFromString(maxStr); err == nil {
			db = db.Where("price <= ?", max)
		}
	}
	if material := strings.TrimSpace(c.QueryParam("material")); material != "" {
		db = db.Where("material = ?", material)
	}
	if limited := c.QueryParam("limited"); limited != "" {
		if b, err := strconv.ParseBool(limited); err == nil {
			db = db.Where("is_limited = ?", b)
		}
	}
	if c.QueryParam("in_stock") == "true" {
		db = db.Where("stock > 0")
	}

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
		"created_at": "created_at",
	}
	sortCol, okSort := allowed[sortField]
	if !okSort {
		sortCol = "created_at"
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

// getProductBySlug returns one product with its gallery and variants
func getProductBySlug(c echo.Context) error {
	slug := c.Param("slug")

	var product domain.Product
	if err := GetDB(c).Where("slug = ? AND is_active = ?", slug, true).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}

	var images []domain.ProductImage
	GetDB(c).Where("product_id = ?", product.ID).Order("is_primary DESC, id ASC").Find(&images)

	var variants []domain.ProductVariant
	GetDB(c).Where("product_id = ?", product.ID).Order("id ASC").Find(&variants)

	return ok(c, map[string]interface{}{
		"product":  product,
		"images":   images,
		"variants": variants,
	})
}
