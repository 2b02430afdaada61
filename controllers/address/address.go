package addressControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

// clearDefaults unsets the default flag on every address the user owns.
// Callers sequence this before marking the new default so at most one
// non-deleted address carries the flag at any observable instant.
func clearDefaults(tx *gorm.DB, userID string) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// findOwned loads an address and enforces ownership.
func findOwned(db *gorm.DB, addressID, userID string) (*models.Address, error) {
	var address models.Address
	if err := db.First(&address, "id = ?", addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Address not found")
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, apperrors.Forbidden("Not authorized")
	}
	return &address, nil
}

// GET /api/addresses
// Returns non-deleted addresses, default first, then newest.
func GetAddresses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var addresses []models.Address
		err := db.Where("user_id = ? AND is_deleted = ?", middleware.UserID(c), false).
			Order("is_default desc, created_at desc").
			Find(&addresses).Error
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, addresses)
	}
}

type addressInput struct {
	FullName     string             `json:"full_name" binding:"required"`
	Phone        string             `json:"phone" binding:"required"`
	AltPhone     string             `json:"alt_phone"`
	Pincode      string             `json:"pincode" binding:"required"`
	AddressLine1 string             `json:"address_line1" binding:"required"`
	AddressLine2 string             `json:"address_line2" binding:"required"`
	Landmark     string             `json:"landmark"`
	City         string             `json:"city" binding:"required"`
	State        string             `json:"state" binding:"required"`
	AddressType  models.AddressType `json:"address_type"`
	IsDefault    bool               `json:"is_default"`
}

// POST /api/addresses
// The first address is always default regardless of the input flag; an
// explicit default clears every other flag before the insert.
func AddAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)

		var input addressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		var address models.Address
		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND is_deleted = ?", userID, false).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= models.MaxAddressesPerUser {
				return apperrors.Conflict("Maximum 10 addresses allowed")
			}

			if input.IsDefault {
				if err := clearDefaults(tx, userID); err != nil {
					return err
				}
			}

			addressType := input.AddressType
			if addressType == "" {
				addressType = models.AddressTypeHome
			}

			address = models.Address{
				UserID:       userID,
				FullName:     input.FullName,
				Phone:        input.Phone,
				AltPhone:     input.AltPhone,
				Pincode:      input.Pincode,
				AddressLine1: input.AddressLine1,
				AddressLine2: input.AddressLine2,
				Landmark:     input.Landmark,
				City:         input.City,
				State:        input.State,
				AddressType:  addressType,
				IsDefault:    input.IsDefault || count == 0,
			}
			return tx.Create(&address).Error
		})
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, address)
	}
}

type updateAddressInput struct {
	FullName     *string             `json:"full_name"`
	Phone        *string             `json:"phone"`
	AltPhone     *string             `json:"alt_phone"`
	Pincode      *string             `json:"pincode"`
	AddressLine1 *string             `json:"address_line1"`
	AddressLine2 *string             `json:"address_line2"`
	Landmark     *string             `json:"landmark"`
	City         *string             `json:"city"`
	State        *string             `json:"state"`
	AddressType  *models.AddressType `json:"address_type"`
	IsDefault    *bool               `json:"is_default"`
}

// PUT /api/addresses/:id
// Partial update: only supplied fields change. Turning default on clears the
// flag everywhere else first.
func UpdateAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)

		address, err := findOwned(db, c.Param("id"), userID)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		var input updateAddressInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		updates := make(map[string]interface{})
		if input.FullName != nil {
			updates["full_name"] = *input.FullName
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.AltPhone != nil {
			updates["alt_phone"] = *input.AltPhone
		}
		if input.Pincode != nil {
			updates["pincode"] = *input.Pincode
		}
		if input.AddressLine1 != nil {
			updates["address_line1"] = *input.AddressLine1
		}
		if input.AddressLine2 != nil {
			updates["address_line2"] = *input.AddressLine2
		}
		if input.Landmark != nil {
			updates["landmark"] = *input.Landmark
		}
		if input.City != nil {
			updates["city"] = *input.City
		}
		if input.State != nil {
			updates["state"] = *input.State
		}
		if input.AddressType != nil {
			updates["address_type"] = *input.AddressType
		}
		if input.IsDefault != nil {
			updates["is_default"] = *input.IsDefault
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if input.IsDefault != nil && *input.IsDefault && !address.IsDefault {
				if err := clearDefaults(tx, userID); err != nil {
					return err
				}
			}
			if len(updates) == 0 {
				return nil
			}
			return tx.Model(address).Updates(updates).Error
		})
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, address)
	}
}

// DELETE /api/addresses/:id
// Soft delete only. A deleted default loses the flag; no other address is
// promoted.
func DeleteAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := findOwned(db, c.Param("id"), middleware.UserID(c))
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		updates := map[string]interface{}{"is_deleted": true}
		if address.IsDefault {
			updates["is_default"] = false
		}
		if err := db.Model(address).Updates(updates).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Address removed"})
	}
}

// PATCH /api/addresses/:id/default
// Clear-then-set, idempotent.
func SetDefaultAddress(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)

		address, err := findOwned(db, c.Param("id"), userID)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := clearDefaults(tx, userID); err != nil {
				return err
			}
			return tx.Model(address).Update("is_default", true).Error
		})
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		address.IsDefault = true
		c.JSON(http.StatusOK, address)
	}
}
