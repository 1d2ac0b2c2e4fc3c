package links

import (
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkdex/linkdex/pkg/linkdex/auth"
	"github.com/linkdex/linkdex/pkg/linkdex/models"
	"gorm.io/gorm"
)

const defaultPageSize = 10

// Handler handles link-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new links handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateLinkRequest represents the request to create a link
type CreateLinkRequest struct {
	URL         string `json:"url" binding:"required,url"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TagIDs      []uint `json:"tagIds"`
}

// UpdateLinkRequest represents the request to update a link.
// A nil TagIDs leaves the tag set unchanged; a non-nil value (including
// an empty slice) replaces it entirely.
type UpdateLinkRequest struct {
	URL         string  `json:"url" binding:"omitempty,url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TagIDs      *[]uint `json:"tagIds"`
}

// TagRef represents a tag attached to a link in API responses
type TagRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LinkResponse represents a link in API responses
type LinkResponse struct {
	ID          uint     `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []TagRef `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Pagination describes the page of a listing relative to all matches
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// ListLinksResponse is the paginated listing envelope
type ListLinksResponse struct {
	Links      []LinkResponse `json:"links"`
	Pagination Pagination     `json:"pagination"`
}

// LinkToResponse converts a link model to its API representation
func LinkToResponse(link models.Link) LinkResponse {
	tags := make([]TagRef, len(link.Tags))
	for i, t := range link.Tags {
		tags[i] = TagRef{ID: t.ID, Name: t.Name}
	}
	return LinkResponse{
		ID:          link.ID,
		URL:         link.URL,
		Title:       link.Title,
		Description: link.Description,
		Tags:        tags,
		CreatedAt:   link.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   link.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ParseTagIDs parses a comma-separated tag id list, skipping entries that
// are not positive integers
func ParseTagIDs(raw string) []uint {
	if raw == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if parsed, err := strconv.ParseUint(part, 10, 32); err == nil && parsed > 0 {
			ids = append(ids, uint(parsed))
		}
	}
	return ids
}

// resolveTags loads the tags for the given ids, requiring every id to
// exist and to belong to the user. Attaching another user's tag or a
// nonexistent tag is rejected rather than silently dropped.
func resolveTags(db *gorm.DB, userID uint, ids []uint) ([]models.Tag, bool) {
	if len(ids) == 0 {
		return []models.Tag{}, true
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var tags []models.Tag
	if err := db.Where("user_id = ? AND id IN ?", userID, ids).Find(&tags).Error; err != nil {
		return nil, false
	}
	if len(tags) != len(unique) {
		return nil, false
	}
	return tags, true
}

// validateURL checks that a URL has a scheme and a host
func validateURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// scopedQuery builds the owner-scoped link query, optionally restricted to
// links carrying at least one of the given tags
func (h *Handler) scopedQuery(userID uint, tagIDs []uint) *gorm.DB {
	query := h.db.Model(&models.Link{}).Where("links.user_id = ?", userID)
	if len(tagIDs) > 0 {
		query = query.
			Joins("JOIN link_tags ON link_tags.link_id = links.id").
			Where("link_tags.tag_id IN ?", tagIDs)
	}
	return query
}

// List returns the user's links with pagination
// @Summary List links
// @Description Get the authenticated user's links, newest first, with pagination
// @Tags links
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 10)"
// @Param tagIds query string false "Comma-separated tag ids; keeps links having at least one"
// @Success 200 {object} ListLinksResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /links [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	page := 1
	if parsed, err := strconv.Atoi(c.Query("page")); err == nil && parsed >= 1 {
		page = parsed
	}
	pageSize := defaultPageSize
	if parsed, err := strconv.Atoi(c.Query("pageSize")); err == nil && parsed >= 1 {
		pageSize = parsed
	}

	tagIDs := ParseTagIDs(c.Query("tagIds"))

	var total int64
	if err := h.scopedQuery(userID, tagIDs).Distinct("links.id").Count(&total).Error; err != nil {
		slog.Error("failed to count links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch links"})
		return
	}

	var links []models.Link
	err := h.scopedQuery(userID, tagIDs).
		Group("links.id").
		Preload("Tags").
		Order("links.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&links).Error
	if err != nil {
		slog.Error("failed to fetch links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch links"})
		return
	}

	responses := make([]LinkResponse, len(links))
	for i, link := range links {
		responses[i] = LinkToResponse(link)
	}

	c.JSON(http.StatusOK, ListLinksResponse{
		Links: responses,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	})
}

// Create creates a new link
// @Summary Create a link
// @Description Create a new bookmark, optionally attaching existing tags
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link details"
// @Success 201 {object} LinkResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /links [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validateURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must include a scheme and host"})
		return
	}

	tags, ok := resolveTags(h.db, userID, req.TagIDs)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more tag ids are invalid"})
		return
	}

	link := models.Link{
		UserID:      userID,
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Tags:        tags,
	}

	if err := h.db.Create(&link).Error; err != nil {
		slog.Error("failed to create link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link"})
		return
	}

	c.JSON(http.StatusCreated, LinkToResponse(link))
}

// findOwnedLink looks the link up by id alone, then compares the owner.
// A combined where-clause would collapse "missing" and "not yours" into a
// single not-found, losing the 404 vs 403 distinction.
func (h *Handler) findOwnedLink(c *gin.Context, userID uint) (*models.Link, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return nil, false
	}

	var link models.Link
	if err := h.db.First(&link, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return nil, false
	}

	if link.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this link"})
		return nil, false
	}

	return &link, true
}

// Update updates a link
// @Summary Update a link
// @Description Update fields of an owned link; tagIds, when present, replaces the tag set
// @Tags links
// @Accept json
// @Produce json
// @Param id path int true "Link ID"
// @Param request body UpdateLinkRequest true "Updated link details"
// @Success 200 {object} LinkResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Link not found"
// @Security BearerAuth
// @Router /links/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	link, ok := h.findOwnedLink(c, userID)
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.URL != "" {
		if !validateURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL must include a scheme and host"})
			return
		}
		link.URL = req.URL
	}
	if req.Title != "" {
		link.Title = req.Title
	}
	if req.Description != "" {
		link.Description = req.Description
	}

	var tags []models.Tag
	if req.TagIDs != nil {
		resolved, ok := resolveTags(h.db, userID, *req.TagIDs)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more tag ids are invalid"})
			return
		}
		tags = resolved
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(link).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return tx.Model(link).Association("Tags").Replace(tags)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to update link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link"})
		return
	}

	if req.TagIDs != nil {
		link.Tags = tags
	} else if err := h.db.Model(link).Association("Tags").Find(&link.Tags); err != nil {
		slog.Error("failed to load link tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link"})
		return
	}

	c.JSON(http.StatusOK, LinkToResponse(*link))
}

// Delete deletes a link
// @Summary Delete a link
// @Description Delete an owned link; its tags survive
// @Tags links
// @Produce json
// @Param id path int true "Link ID"
// @Success 200 {object} map[string]string "Link deleted"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Link not found"
// @Security BearerAuth
// @Router /links/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	link, ok := h.findOwnedLink(c, userID)
	if !ok {
		return
	}

	if err := h.db.Model(link).Association("Tags").Clear(); err != nil {
		slog.Error("failed to detach link tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	if err := h.db.Delete(link).Error; err != nil {
		slog.Error("failed to delete link", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}

// RegisterRoutes registers link routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/links", h.List)
	rg.POST("/links", h.Create)
	rg.PUT("/links/:id", h.Update)
	rg.DELETE("/links/:id", h.Delete)
}
