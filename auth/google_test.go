package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestLinkOrCreateUser_NewUser(t *testing.T) {
	db := setupTestDB(t)

	profile := &ExternalProfile{
		ExternalID: "goog-1",
		Email:      "new@example.com",
		Name:       "New User",
		Avatar:     "https://example.com/pic.jpg",
	}

	user, err := linkOrCreateUser(db, profile)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "goog-1", *user.GoogleID)
	assert.Empty(t, user.Password)
	// Google vouches for the email: the account starts verified.
	assert.True(t, user.IsVerified)
}

func TestLinkOrCreateUser_MatchByExternalID(t *testing.T) {
	db := setupTestDB(t)

	googleID := "goog-2"
	seeded := models.User{Name: "Existing", Email: "existing@example.com", GoogleID: &googleID, IsVerified: true}
	require.NoError(t, db.Create(&seeded).Error)

	user, err := linkOrCreateUser(db, &ExternalProfile{ExternalID: "goog-2", Email: "other@example.com"})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestLinkOrCreateUser_LinksByEmail(t *testing.T) {
	db := setupTestDB(t)

	seeded := models.User{Name: "Pwd User", Email: "pwd@example.com", IsVerified: true}
	require.NoError(t, seeded.SetPassword("secret123"))
	require.NoError(t, db.Create(&seeded).Error)

	profile := &ExternalProfile{
		ExternalID: "goog-3",
		Email:      "pwd@example.com",
		Name:       "Pwd User",
		Avatar:     "https://example.com/avatar.jpg",
	}
	user, err := linkOrCreateUser(db, profile)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", seeded.ID).Error)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "goog-3", *stored.GoogleID)
	// Avatar filled because it was missing; password untouched.
	assert.Equal(t, "https://example.com/avatar.jpg", stored.Avatar)
	assert.True(t, stored.ComparePassword("secret123"))
}

func TestLinkOrCreateUser_KeepsExistingAvatar(t *testing.T) {
	db := setupTestDB(t)

	seeded := models.User{Name: "Pic User", Email: "pic@example.com", Avatar: "https://example.com/original.jpg"}
	require.NoError(t, db.Create(&seeded).Error)

	_, err := linkOrCreateUser(db, &ExternalProfile{
		ExternalID: "goog-4",
		Email:      "pic@example.com",
		Avatar:     "https://example.com/replacement.jpg",
	})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", seeded.ID).Error)
	assert.Equal(t, "https://example.com/original.jpg", stored.Avatar)
}

type fakeVerifier struct {
	profile *ExternalProfile
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*ExternalProfile, error) {
	return f.profile, f.err
}

func TestGoogleLoginHandler_RedirectsWithToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FRONTEND_URL", "https://shop.example.com")

	db := setupTestDB(t)
	verifier := &fakeVerifier{profile: &ExternalProfile{
		ExternalID: "goog-5",
		Email:      "redirect@example.com",
		Name:       "Redirect User",
	}}

	r := gin.New()
	r.POST("/auth/google", GoogleLoginHandler(db, verifier))

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"tok"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", location.Host)
	assert.Equal(t, "/auth/callback", location.Path)

	q := location.Query()
	assert.Equal(t, "redirect@example.com", q.Get("email"))
	assert.Equal(t, "Redirect User", q.Get("name"))
	assert.NotEmpty(t, q.Get("userId"))

	claims, err := ParseToken(q.Get("token"))
	require.NoError(t, err)
	assert.Equal(t, q.Get("userId"), claims.Subject)
}

func TestGoogleLoginHandler_BadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	r := gin.New()
	r.POST("/auth/google", GoogleLoginHandler(db, &fakeVerifier{err: errors.New("revoked")}))

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}
