package authControllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	"github.com/sunny-kumar-mit/ShopKart-Backend/auth"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
	"github.com/sunny-kumar-mit/ShopKart-Backend/utils"
)

// OTPValidity is the absolute lifetime of a generated code pair.
const OTPValidity = 10 * time.Minute

// GenerateOTP returns a random 6-digit numeric code.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("otp generation: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// findByIdentifier looks a user up by email or mobile.
func findByIdentifier(db *gorm.DB, identifier string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ? OR mobile = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates (or reuses an unverified) account and dispatches one OTP
// per channel. A verified holder of the email or mobile is a conflict.
func Register(db *gorm.DB, notifier utils.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		var user models.User
		err := db.Where("email = ? OR mobile = ?", req.Email, req.Mobile).First(&user).Error
		switch {
		case err == nil && user.IsVerified:
			apperrors.Respond(c, apperrors.Conflict("User with this email or mobile already exists"))
			return
		case err == nil:
			// Unverified leftover from an abandoned signup: take it over.
			user.Name = req.Name
			user.Mobile = &req.Mobile
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Name: req.Name, Email: req.Email, Mobile: &req.Mobile}
		default:
			apperrors.Respond(c, err)
			return
		}

		if err := user.SetPassword(req.Password); err != nil {
			apperrors.Respond(c, err)
			return
		}

		emailOtp := GenerateOTP()
		mobileOtp := GenerateOTP()
		user.SetOTP(emailOtp, mobileOtp, time.Now().Add(OTPValidity))

		if err := db.Save(&user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		if err := notifier.SendEmail(user.Email, "ShopKart Registration Code", "Your Email OTP is: "+emailOtp); err != nil {
			apperrors.Respond(c, err)
			return
		}
		notifier.SendSMS(user.MobileNumber(), "Your ShopKart verification code is: "+mobileOtp)

		c.JSON(http.StatusOK, gin.H{"message": "OTPs sent", "identifier": user.Email})
	}
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	OTP        string `json:"otp"`
	EmailOTP   string `json:"emailOtp"`
	MobileOTP  string `json:"mobileOtp"`
}

// VerifyOTP finishes both OTP flows: dual mode (registration, both codes must
// match) when emailOtp+mobileOtp are supplied, single mode (login, either
// stored code matches) when otp is supplied. Success promotes the account to
// verified, clears the OTP state and issues a session token.
func VerifyOTP(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		user, err := findByIdentifier(db, req.Identifier)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		if user.OTPExpired(time.Now()) {
			apperrors.Respond(c, apperrors.Expired("OTP expired"))
			return
		}

		switch {
		case req.EmailOTP != "" && req.MobileOTP != "":
			if user.EmailOTP != req.EmailOTP || user.MobileOTP != req.MobileOTP {
				apperrors.Respond(c, apperrors.InvalidCode("Invalid OTPs"))
				return
			}
		case req.OTP != "":
			// Either channel wins: the login step may have raced a second
			// login request that re-bound the code to the other channel.
			if user.EmailOTP != req.OTP && user.MobileOTP != req.OTP {
				apperrors.Respond(c, apperrors.InvalidCode("Invalid OTP"))
				return
			}
		default:
			apperrors.Respond(c, apperrors.BadRequest("OTP required"))
			return
		}

		user.IsVerified = true
		user.ClearOTP()
		if err := db.Save(user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		token, err := auth.IssueToken(user)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":     user.ID,
				"name":   user.Name,
				"email":  user.Email,
				"mobile": user.MobileNumber(),
			},
		})
	}
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login checks the password and sends a single OTP over whichever channel the
// identifier named. The other channel's stored code is cleared so a stale
// code from an earlier attempt cannot cross over.
func Login(db *gorm.DB, notifier utils.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		var user models.User
		err := db.Where("email = ? OR mobile = ?", req.Identifier, req.Identifier).First(&user).Error
		if err != nil || !user.ComparePassword(req.Password) {
			apperrors.Respond(c, apperrors.InvalidCredentials("Invalid Credentials"))
			return
		}

		otp := GenerateOTP()
		expires := time.Now().Add(OTPValidity)

		var message, channel string
		if user.Email == req.Identifier {
			user.SetOTP(otp, "", expires)
			message = "OTP sent to email"
			channel = "email"
		} else {
			user.SetOTP("", otp, expires)
			message = "OTP sent to mobile"
			channel = "mobile"
		}

		if err := db.Save(&user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		if channel == "email" {
			if err := notifier.SendEmail(user.Email, "ShopKart Login Code", "Your login code is: "+otp); err != nil {
				apperrors.Respond(c, err)
				return
			}
		} else {
			notifier.SendSMS(user.MobileNumber(), "Your ShopKart login code is: "+otp)
		}

		c.JSON(http.StatusOK, gin.H{"message": message, "identifier": req.Identifier, "channel": channel})
	}
}

type forgotPasswordRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ForgotPassword starts the reset flow with a fresh dual OTP pair.
func ForgotPassword(db *gorm.DB, notifier utils.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		user, err := findByIdentifier(db, req.Identifier)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}

		emailOtp := GenerateOTP()
		mobileOtp := GenerateOTP()
		user.SetOTP(emailOtp, mobileOtp, time.Now().Add(OTPValidity))

		if err := db.Save(user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		if err := notifier.SendEmail(user.Email, "ShopKart Password Reset", "Your Email OTP is: "+emailOtp); err != nil {
			apperrors.Respond(c, err)
			return
		}
		notifier.SendSMS(user.MobileNumber(), "Your ShopKart password reset code is: "+mobileOtp)

		c.JSON(http.StatusOK, gin.H{"message": "OTPs sent to registered email and mobile"})
	}
}

type resetPasswordRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	EmailOTP    string `json:"emailOtp" binding:"required"`
	MobileOTP   string `json:"mobileOtp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ResetPassword completes the reset flow: both codes must match and be fresh.
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}

		user, err := findByIdentifier(db, req.Identifier)
		if err != nil {
			apperrors.Respond(c, err)
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

		if err := db.Save(user).Error; err != nil {
			apperrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
	}
}
