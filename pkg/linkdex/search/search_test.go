package search

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/linkdex/linkdex/pkg/linkdex/auth"
	"github.com/linkdex/linkdex/pkg/linkdex/links"
	"github.com/linkdex/linkdex/pkg/linkdex/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	api := r.Group("/api")
	api.Use(auth.AuthMiddleware(db))
	handler.RegisterRoutes(api)

	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email)
	return "Bearer " + token
}

func doSearch(router *gin.Engine, query string, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/api/search"+query, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// seedLinks creates the fixture set used by most search tests
func seedLinks(t *testing.T, db *gorm.DB, user models.User) (models.Tag, models.Tag) {
	tech := models.Tag{UserID: user.ID, Name: "Technology"}
	news := models.Tag{UserID: user.ID, Name: "News"}
	db.Create(&tech)
	db.Create(&news)

	db.Create(&models.Link{
		UserID: user.ID,
		URL:    "https://reactjs.org",
		Title:  "React Documentation",
		Tags:   []models.Tag{tech},
	})
	db.Create(&models.Link{
		UserID:      user.ID,
		URL:         "https://go.dev",
		Title:       "The Go Programming Language",
		Description: "Build simple, secure, scalable systems",
		Tags:        []models.Tag{tech, news},
	})
	db.Create(&models.Link{
		UserID: user.ID,
		URL:    "https://example.com/cooking",
		Title:  "Weeknight Recipes",
	})

	return tech, news
}

func TestSearchRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doSearch(router, "?q=react", "")

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestSearchByText(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	resp := doSearch(router, "?q=React", getAuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "React Documentation" {
		t.Errorf("Expected React Documentation, got %s", results[0].Title)
	}
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	db.Create(&models.Link{UserID: user.ID, URL: "https://example.com/a", Title: "100% Complete Guide"})
	db.Create(&models.Link{UserID: user.ID, URL: "https://example.com/b", Title: "100x Faster Queries"})
	db.Create(&models.Link{UserID: user.ID, URL: "https://example.com/c", Title: "snake_case style"})

	// %25 is a URL-encoded percent sign
	resp := doSearch(router, "?q=100%25", getAuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result for literal %%, got %d", len(results))
	}
	if results[0].Title != "100% Complete Guide" {
		t.Errorf("Expected 100%% Complete Guide, got %s", results[0].Title)
	}

	resp = doSearch(router, "?q=snake_case", getAuthHeader(user))
	var underscoreResults []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &underscoreResults)

	if len(underscoreResults) != 1 {
		t.Fatalf("Expected 1 result for literal _, got %d", len(underscoreResults))
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	resp := doSearch(router, "?q=rEaCt", getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 1 {
		t.Errorf("Expected case-insensitive match, got %d results", len(results))
	}
}

func TestSearchMatchesDescriptionAndURL(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	// "scalable" only appears in a description
	resp := doSearch(router, "?q=scalable", getAuthHeader(user))
	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)
	if len(results) != 1 {
		t.Errorf("Expected description match, got %d results", len(results))
	}

	// "cooking" only appears in a URL
	resp = doSearch(router, "?q=cooking", getAuthHeader(user))
	json.Unmarshal(resp.Body.Bytes(), &results)
	if len(results) != 1 {
		t.Errorf("Expected URL match, got %d results", len(results))
	}
}

func TestSearchNoMatchesReturnsEmptyList(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	resp := doSearch(router, "?q=nonexistent", getAuthHeader(user))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	if resp.Body.String() != "[]" {
		t.Errorf("Expected empty array body, got %s", resp.Body.String())
	}
}

func TestSearchByTagName(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	resp := doSearch(router, "?tag=Technology", getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 2 {
		t.Fatalf("Expected 2 tagged results, got %d", len(results))
	}
}

func TestSearchByTagIDs(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	_, news := seedLinks(t, db, user)

	resp := doSearch(router, fmt.Sprintf("?tagIds=%d", news.ID), getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "The Go Programming Language" {
		t.Errorf("Expected Go link, got %s", results[0].Title)
	}
}

func TestSearchTextAndTagCombined(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	tech, _ := seedLinks(t, db, user)

	// The text matches all three links, the tag filter keeps two
	resp := doSearch(router, fmt.Sprintf("?q=e&tagIds=%d", tech.ID), getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Title == "Weeknight Recipes" {
			t.Error("Tag filter should have excluded the untagged link")
		}
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	other := createTestUser(t, db, "other@example.com")
	seedLinks(t, db, user)

	db.Create(&models.Link{
		UserID: other.ID,
		URL:    "https://reactnative.dev",
		Title:  "React Native",
	})

	resp := doSearch(router, "?q=React", getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result scoped to the requesting user, got %d", len(results))
	}
	if results[0].Title != "React Documentation" {
		t.Errorf("Expected own link only, got %s", results[0].Title)
	}
}

func TestSearchSortByTitle(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	resp := doSearch(router, "?sort=title:asc", getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	expected := []string{"React Documentation", "The Go Programming Language", "Weeknight Recipes"}
	for i, title := range expected {
		if results[i].Title != title {
			t.Errorf("Expected result %d to be %q, got %q", i, title, results[i].Title)
		}
	}
}

func TestSearchIgnoresUnknownSortField(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")
	seedLinks(t, db, user)

	// A sort outside the whitelist falls back to the default ordering
	resp := doSearch(router, "?sort=password_hash:asc", getAuthHeader(user))

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

func TestSearchPagination(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	for i := 0; i < 12; i++ {
		db.Create(&models.Link{
			UserID: user.ID,
			URL:    fmt.Sprintf("https://example.com/%d", i),
			Title:  fmt.Sprintf("Example %d", i),
		})
	}

	resp := doSearch(router, "?q=Example&page=2&pageSize=5", getAuthHeader(user))

	var results []links.LinkResponse
	json.Unmarshal(resp.Body.Bytes(), &results)

	if len(results) != 5 {
		t.Errorf("Expected 5 results on page 2, got %d", len(results))
	}
}
