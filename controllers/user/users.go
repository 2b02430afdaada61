package userControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	authControllers "github.com/sunny-kumar-mit/ShopKart-Backend/controllers/auth"
	"github.com/sunny-kumar-mit/ShopKart-Backend/middleware"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
	"github.com/sunny-kumar-mit/ShopKart-Backend/utils"
)

// GET /api/user/profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperrors.Respond(c, apperrors.NotFound("User not found"))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type updateProfileInput struct {
	Name   *string    `json:"name"`
	Gender *string    `json:"gender"`
	DOB    *time.Time `json:"dob"`
	Mobile *string    `json:"mobile"`
}

// PUT /api/user/profile
// Partial update: only supplied fields change. A mobile change is checked for
// uniqueness and drops the verified flag until the new number is re-proven.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperrors.Respond(c, apperrors.NotFound("User not found"))
			return
		}

		var input updateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Gender != nil {
			updates["gender"] = *input.Gender
		}
		if input.DOB != nil {
			updates["dob"] = *input.DOB
		}
		if input.Mobile != nil && *input.Mobile != user.MobileNumber() {
			var existing models.User
			err := db.Where("mobile = ?", *input.Mobile).First(&existing).Error
			if err == nil {
				apperrors.Respond(c, apperrors.Conflict("Mobile number already in use"))
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				apperrors.Respond(c, err)
				return
			}
			updates["mobile"] = *input.Mobile
			updates["is_verified"] = false
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				apperrors.Respond(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"mobile": user.MobileNumber(),
			"gender": user.Gender,
			"dob":    user.DOB,
		})
	}
}

type initiateChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
}

// POST /api/user/change-password/init
// Step 1: prove the current password, then send a fresh dual OTP pair.
func InitiateChangePassword(db *gorm.DB, notifier utils.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req initiateChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperrors.Respond(c, apperrors.NotFound("User not found"))
			return
		}

		if user.Password == "" {
			apperrors.Respond(c, apperrors.Conflict(`User uses social login. Set password via "Forgot Password".`))
			return
		}
		if !user.ComparePassword(req.CurrentPassword) {
			apperrors.Respond(c, apperrors.InvalidCredentials("Invalid current password"))
			return
		}

		emailOtp := authControllers.GenerateOTP()
		mobileOtp := authControllers.GenerateOTP()
		user.SetOTP(emailOtp, mobileOtp, time.Now().Add(authControllers.OTPValidity))

		if err := db.Save(&user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		if err := notifier.SendEmail(user.Email, "ShopKart Password Change Verification", "Your Email OTP is: "+emailOtp); err != nil {
			apperrors.Respond(c, err)
			return
		}
		notifier.SendSMS(user.MobileNumber(), "Your ShopKart password change code is: "+mobileOtp)

		c.JSON(http.StatusOK, gin.H{"message": "OTPs sent successfully to email and mobile"})
	}
}

type verifyChangePasswordRequest struct {
	EmailOTP    string `json:"emailOtp" binding:"required"`
	MobileOTP   string `json:"mobileOtp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// POST /api/user/change-password/verify
// Step 2: both codes must match and be fresh, then the password is rehashed.
func VerifyChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperrors.Respond(c, apperrors.NotFound("User not found"))
			return
		}

		if user.OTPExpired(time.Now()) {
			apperrors.Respond(c, apperrors.Expired("OTP expired"))
			return
		}
		if user.EmailOTP != req.EmailOTP || user.MobileOTP != req.MobileOTP {
			apperrors.Respond(c, apperrors.InvalidCode("Invalid OTPs"))
			return
		}

		if err := user.SetPassword(req.NewPassword); err != nil {
			apperrors.Respond(c, err)
			return
		}
		user.ClearOTP()

		if err := db.Save(&user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// DELETE /api/user/delete-account (hard delete)
func DeleteAccount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Delete(&models.User{}, "id = ?", middleware.UserID(c)).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
	}
}
