package search

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkdex/linkdex/pkg/linkdex/auth"
	"github.com/linkdex/linkdex/pkg/linkdex/links"
	"github.com/linkdex/linkdex/pkg/linkdex/models"
	"gorm.io/gorm"
)

const defaultPageSize = 10

// sortFields whitelists the columns a sort parameter may reference
var sortFields = map[string]string{
	"title":      "links.title",
	"url":        "links.url",
	"created_at": "links.created_at",
	"createdAt":  "links.created_at",
	"updated_at": "links.updated_at",
	"updatedAt":  "links.updated_at",
}

// Handler handles search requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new search handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// likeEscaper neutralizes LIKE wildcards so a query term matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// parseSort turns "field:dir" into an ORDER BY clause, falling back to
// newest-first for anything outside the whitelist
func parseSort(raw string) string {
	if raw == "" {
		return "links.created_at DESC"
	}
	parts := strings.SplitN(raw, ":", 2)
	column, ok := sortFields[parts[0]]
	if !ok {
		return "links.created_at DESC"
	}
	direction := "ASC"
	if len(parts) == 2 && strings.EqualFold(parts[1], "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

// Search filters the user's links by substring and tag membership
// @Summary Search links
// @Description Filter links by a case-insensitive substring over title, description and URL, and/or by tag
// @Tags search
// @Produce json
// @Param q query string false "Substring to match against title, description and URL"
// @Param tag query string false "Tag name to filter by"
// @Param tagIds query string false "Comma-separated tag ids; keeps links having at least one"
// @Param page query int false "Page number; omit for all matches"
// @Param pageSize query int false "Page size (default 10 when paginating)"
// @Param sort query string false "Sort as field:dir, e.g. title:asc"
// @Success 200 {array} links.LinkResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Security BearerAuth
// @Router /search [get]
func (h *Handler) Search(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	query := h.db.Model(&models.Link{}).Where("links.user_id = ?", userID)

	if q := c.Query("q"); q != "" {
		term := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where(
			`(LOWER(links.title) LIKE ? ESCAPE '\' OR LOWER(links.description) LIKE ? ESCAPE '\' OR LOWER(links.url) LIKE ? ESCAPE '\')`,
			term, term, term,
		)
	}

	joined := false
	if tagName := c.Query("tag"); tagName != "" {
		query = query.
			Joins("JOIN link_tags ON link_tags.link_id = links.id").
			Joins("JOIN tags ON tags.id = link_tags.tag_id").
			Where("tags.user_id = ? AND LOWER(tags.name) = LOWER(?)", userID, tagName)
		joined = true
	}
	if tagIDs := links.ParseTagIDs(c.Query("tagIds")); len(tagIDs) > 0 {
		if !joined {
			query = query.Joins("JOIN link_tags ON link_tags.link_id = links.id")
			joined = true
		}
		query = query.Where("link_tags.tag_id IN ?", tagIDs)
	}
	if joined {
		query = query.Group("links.id")
	}

	query = query.Order(parseSort(c.Query("sort")))

	// Pagination is opt-in: without page/pageSize all matches come back
	if c.Query("page") != "" || c.Query("pageSize") != "" {
		page := 1
		if parsed, err := strconv.Atoi(c.Query("page")); err == nil && parsed >= 1 {
			page = parsed
		}
		pageSize := defaultPageSize
		if parsed, err := strconv.Atoi(c.Query("pageSize")); err == nil && parsed >= 1 {
			pageSize = parsed
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var results []models.Link
	if err := query.Preload("Tags").Find(&results).Error; err != nil {
		slog.Error("failed to search links", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	responses := make([]links.LinkResponse, len(results))
	for i, link := range results {
		responses[i] = links.LinkToResponse(link)
	}

	c.JSON(http.StatusOK, responses)
}

// RegisterRoutes registers search routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
}
