package addressControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	require.NoError(t, db.AutoMigrate(&models.Address{}))
	return db
}

// asUser injects the authenticated user id the way the token middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newAddressRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/addresses", asUser(userID))
	g.GET("", GetAddresses(db))
	g.POST("", AddAddress(db))
	g.PUT("/:id", UpdateAddress(db))
	g.DELETE("/:id", DeleteAddress(db))
	g.PATCH("/:id/default", SetDefaultAddress(db))
	return r
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func addressPayload(name string, isDefault bool) gin.H {
	return gin.H{
		"full_name":     name,
		"phone":         "9876543210",
		"pincode":       "560001",
		"address_line1": "42 MG Road",
		"address_line2": "Near Metro",
		"city":          "Bengaluru",
		"state":         "Karnataka",
		"is_default":    isDefault,
	}
}

func createAddress(t *testing.T, r *gin.Engine, name string, isDefault bool) models.Address {
	t.Helper()
	w := performJSON(r, http.MethodPost, "/api/addresses", addressPayload(name, isDefault))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created models.Address
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func defaultCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ? AND is_deleted = ?", userID, true, false).
		Count(&n).Error)
	return n
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	// Explicitly not default, but it is the only address.
	created := createAddress(t, r, "Asha", false)
	assert.True(t, created.IsDefault)
	assert.Equal(t, models.AddressTypeHome, created.AddressType)
}

func TestAddDefaultClearsPreviousDefault(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	first := createAddress(t, r, "Home", false)
	second := createAddress(t, r, "Work", true)

	var stored models.Address
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	assert.False(t, stored.IsDefault)
	stored = models.Address{}
	require.NoError(t, db.First(&stored, "id = ?", second.ID).Error)
	assert.True(t, stored.IsDefault)

	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))
}

func TestAtMostOneDefaultAfterMutationSequence(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	a := createAddress(t, r, "A", false)
	b := createAddress(t, r, "B", true)
	c := createAddress(t, r, "C", false)

	w := performJSON(r, http.MethodPatch, "/api/addresses/"+c.ID+"/default", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(r, http.MethodPut, "/api/addresses/"+a.ID, gin.H{"is_default": true})
	require.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))

	var stored models.Address
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.True(t, stored.IsDefault)
	stored = models.Address{}
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.False(t, stored.IsDefault)
}

func TestSetDefaultIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")
	a := createAddress(t, r, "A", true)

	for i := 0; i < 2; i++ {
		w := performJSON(r, http.MethodPatch, "/api/addresses/"+a.ID+"/default", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))
}

func TestAddressLimit(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	for i := 0; i < models.MaxAddressesPerUser; i++ {
		createAddress(t, r, fmt.Sprintf("Addr %d", i), false)
	}

	w := performJSON(r, http.MethodPost, "/api/addresses", addressPayload("One too many", false))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Maximum 10 addresses allowed")

	// Soft-deleting one frees a slot.
	var victim models.Address
	require.NoError(t, db.Where("user_id = ? AND is_default = ?", "user-1", false).First(&victim).Error)
	w = performJSON(r, http.MethodDelete, "/api/addresses/"+victim.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(r, http.MethodPost, "/api/addresses", addressPayload("Fits now", false))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeleteIsSoftAndDropsDefaultFlag(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	a := createAddress(t, r, "A", true)
	b := createAddress(t, r, "B", false)

	w := performJSON(r, http.MethodDelete, "/api/addresses/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Row survives, flagged deleted, default dropped without promoting b.
	var stored models.Address
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.True(t, stored.IsDeleted)
	assert.False(t, stored.IsDefault)

	stored = models.Address{}
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.False(t, stored.IsDefault)

	// Listing no longer shows the deleted address.
	w = performJSON(r, http.MethodGet, "/api/addresses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Address
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, b.ID, listed[0].ID)
}

func TestListOrdersDefaultFirst(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	createAddress(t, r, "A", false)
	createAddress(t, r, "B", false)
	c := createAddress(t, r, "C", true)

	w := performJSON(r, http.MethodGet, "/api/addresses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Address
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, c.ID, listed[0].ID)
}

func TestUpdatePartialFields(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")
	a := createAddress(t, r, "A", true)

	w := performJSON(r, http.MethodPut, "/api/addresses/"+a.ID, gin.H{
		"city":         "Mumbai",
		"address_type": "Work",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Address
	require.NoError(t, db.First(&stored, "id = ?", a.ID).Error)
	assert.Equal(t, "Mumbai", stored.City)
	assert.Equal(t, models.AddressTypeWork, stored.AddressType)
	// Untouched fields survive.
	assert.Equal(t, "A", stored.FullName)
	assert.True(t, stored.IsDefault)
}

func TestOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	owner := newAddressRouter(db, "user-1")
	intruder := newAddressRouter(db, "user-2")

	a := createAddress(t, owner, "A", true)

	w := performJSON(intruder, http.MethodPut, "/api/addresses/"+a.ID, gin.H{"city": "Delhi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(intruder, http.MethodDelete, "/api/addresses/"+a.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(intruder, http.MethodPatch, "/api/addresses/"+a.ID+"/default", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Per-user defaults stay independent.
	createAddress(t, intruder, "Mine", true)
	assert.EqualValues(t, 1, defaultCount(t, db, "user-1"))
	assert.EqualValues(t, 1, defaultCount(t, db, "user-2"))
}

func TestUnknownAddressIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	r := newAddressRouter(db, "user-1")

	w := performJSON(r, http.MethodDelete, "/api/addresses/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
