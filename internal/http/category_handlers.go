package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/repo"
)

type categoryReq struct {
	Name string `json:"name"`
}

// ListCategories godoc
// @Summary List the caller's categories
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Category
// @Router /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	items, err := h.Store.ListCategories(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if items == nil {
		items = []domain.Category{}
	}
	c.JSON(http.StatusOK, items)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body categoryReq true "name"
// @Success 201 {object} domain.Category
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in categoryReq
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	cat := &domain.Category{UserID: uid, Name: strings.TrimSpace(in.Name)}
	if err := h.Store.CreateCategory(c.Request.Context(), cat); err != nil {
		if err == repo.ErrDuplicate {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) GetCategory(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cat, err := h.Store.FindCategory(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var in categoryReq
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	updated, err := h.Store.UpdateCategoryName(c.Request.Context(), uid, id, strings.TrimSpace(in.Name))
	if err == repo.ErrDuplicate {
		c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": strings.TrimSpace(in.Name)})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	deleted, err := h.Store.DeleteCategory(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
