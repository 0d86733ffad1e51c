package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexchakra/showcase/internal/domain"
	"github.com/nexchakra/showcase/internal/webserver"
	"github.com/nexchakra/showcase/pkg/common"
)

type categoryPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Slug        string `json:"slug"`
	ParentId    int64  `json:"parent_id,string"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Sort        int    `json:"sort"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listAdminCategories)
	webserver.ApiPOST("/categories", createCategory)
	webserver.ApiPUT("/categories/:id", updateCategory)
	webserver.ApiDELETE("/categories/:id", deleteCategory)
}

func listAdminCategories(c echo.Context) error {
	db := GetDB(c).Model(&domain.Category{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ? OR slug ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			lq := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", lq, lq)
		}
	}
	var rows []domain.Category
	if err := db.Order("sort ASC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, rows)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Name)
	}
	var count int64
	GetDB(c).Model(&domain.Category{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SLUG_EXISTS", "Category slug already in use", nil)
	}
	if payload.ParentId != 0 {
		var parent domain.Category
		if err := GetDB(c).Where("id = ?", payload.ParentId).First(&parent).Error; err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Parent category not found", nil)
		}
	}

	now := time.Now()
	cat := domain.Category{
		ID:          common.UUIDint64(),
		Name:        strings.TrimSpace(payload.Name),
		Slug:        slug,
		ParentId:    payload.ParentId,
		Description: payload.Description,
		Image:       strings.TrimSpace(payload.Image),
		Sort:        payload.Sort,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := GetDB(c).Create(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	addOprLog(c, "category:create", fmt.Sprintf("created category %s (%d)", cat.Name, cat.ID))
	return ok(c, cat)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", nil)
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		slug = common.Slugify(payload.Name)
	}
	var count int64
	GetDB(c).Model(&domain.Category{}).Where("slug = ? AND id <> ?", slug, id).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "SLUG_EXISTS", "Category slug already in use", nil)
	}
	if payload.ParentId == cat.ID {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category cannot be its own parent", nil)
	}

	cat.Name = strings.TrimSpace(payload.Name)
	cat.Slug = slug
	cat.ParentId = payload.ParentId
	cat.Description = payload.Description
	cat.Image = strings.TrimSpace(payload.Image)
	cat.Sort = payload.Sort
	cat.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}
	addOprLog(c, "category:update", fmt.Sprintf("updated category %s (%d)", cat.Name, cat.ID))
	return ok(c, cat)
}

// deleteCategory refuses to remove a category that still has products or
// subcategories attached
func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var inUse int64
	GetDB(c).Model(&domain.Product{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE", "Category still has products", nil)
	}
	GetDB(c).Model(&domain.Category{}).Where("parent_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE", "Category still has subcategories", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Category{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	addOprLog(c, "category:delete", fmt.Sprintf("deleted category %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
