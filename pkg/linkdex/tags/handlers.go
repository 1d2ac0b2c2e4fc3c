package tags

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkdex/linkdex/pkg/linkdex/auth"
	"github.com/linkdex/linkdex/pkg/linkdex/models"
	"gorm.io/gorm"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateTagRequest represents the request to create a tag
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateTagRequest represents the request to rename a tag
type UpdateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// LinkRef represents a link attached to a tag in API responses
type LinkRef struct {
	ID    uint   `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Links     []LinkRef `json:"links"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

func tagToResponse(tag models.Tag) TagResponse {
	links := make([]LinkRef, len(tag.Links))
	for i, l := range tag.Links {
		links[i] = LinkRef{ID: l.ID, URL: l.URL, Title: l.Title}
	}
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		Links:     links,
		CreatedAt: tag.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: tag.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// nameTaken reports whether the user already has a tag with this name,
// compared case-insensitively. excludeID skips the tag being renamed.
func (h *Handler) nameTaken(userID uint, name string, excludeID uint) (bool, error) {
	query := h.db.Model(&models.Tag{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// isUniqueViolation reports whether an error came from the per-user tag
// name index. Racing creates can slip past nameTaken; the constraint error
// still maps to the duplicate response rather than a 500.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// List returns all of the user's tags
// @Summary List tags
// @Description Get the authenticated user's tags, name ascending, with their links
// @Tags tags
// @Produce json
// @Success 200 {array} TagResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /tags [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var tags []models.Tag
	err := h.db.Where("user_id = ?", userID).
		Preload("Links").
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		slog.Error("failed to fetch tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tagToResponse(tag)
	}

	c.JSON(http.StatusOK, responses)
}

// Create creates a new tag
// @Summary Create a tag
// @Description Create a new tag; names are unique per user, case-insensitively
// @Tags tags
// @Accept json
// @Produce json
// @Param request body CreateTagRequest true "Tag details"
// @Success 201 {object} TagResponse
// @Failure 400 {object} map[string]string "Validation error or duplicate name"
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /tags [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name is required"})
		return
	}

	taken, err := h.nameTaken(userID, name, 0)
	if err != nil {
		slog.Error("failed to check tag name", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name already exists for this user"})
		return
	}

	tag := models.Tag{
		UserID: userID,
		Name:   name,
	}

	if err := h.db.Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name already exists for this user"})
			return
		}
		slog.Error("failed to create tag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, tagToResponse(tag))
}

// findOwnedTag looks the tag up by id alone, then compares the owner, so
// that a missing tag and someone else's tag answer differently.
func (h *Handler) findOwnedTag(c *gin.Context, userID uint) (*models.Tag, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return nil, false
	}

	var tag models.Tag
	if err := h.db.First(&tag, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return nil, false
	}

	if tag.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this tag"})
		return nil, false
	}

	return &tag, true
}

// Update renames a tag
// @Summary Rename a tag
// @Description Rename an owned tag; the new name must be unique for the user
// @Tags tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param request body UpdateTagRequest true "New tag name"
// @Success 200 {object} TagResponse
// @Failure 400 {object} map[string]string "Validation error or duplicate name"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Tag not found"
// @Security BearerAuth
// @Router /tags/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	tag, ok := h.findOwnedTag(c, userID)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name is required"})
		return
	}

	taken, err := h.nameTaken(userID, name, tag.ID)
	if err != nil {
		slog.Error("failed to check tag name", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name already exists for this user"})
		return
	}

	tag.Name = name
	if err := h.db.Save(tag).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name already exists for this user"})
			return
		}
		slog.Error("failed to update tag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}

	if err := h.db.Model(tag).Association("Links").Find(&tag.Links); err != nil {
		slog.Error("failed to load tag links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}

	c.JSON(http.StatusOK, tagToResponse(*tag))
}

// Delete deletes a tag
// @Summary Delete a tag
// @Description Delete an owned tag, detaching it from all links; the links survive
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]string "Tag deleted"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Tag not found"
// @Security BearerAuth
// @Router /tags/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	tag, ok := h.findOwnedTag(c, userID)
	if !ok {
		return
	}

	if err := h.db.Model(tag).Association("Links").Clear(); err != nil {
		slog.Error("failed to detach tag from links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	if err := h.db.Delete(tag).Error; err != nil {
		slog.Error("failed to delete tag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
	rg.POST("/tags", h.Create)
	rg.PUT("/tags/:id", h.Update)
	rg.DELETE("/tags/:id", h.Delete)
}
