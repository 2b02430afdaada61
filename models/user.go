package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity record. Password and GoogleID are both optional:
// password accounts fill the former, Google accounts the latter. OTP fields
// are transient and only ever hold the most recently generated codes.
type User struct {
	ID       string     `gorm:"primaryKey" json:"id"`
	Name     string     `gorm:"not null" json:"name"`
	Email    string     `gorm:"uniqueIndex;not null" json:"email"`
	Mobile   *string    `gorm:"uniqueIndex" json:"mobile,omitempty"`
	Password string     `json:"-"`
	GoogleID *string    `gorm:"uniqueIndex" json:"-"`
	Avatar   string     `json:"avatar,omitempty"`
	Gender   string     `gorm:"type:VARCHAR(10)" json:"gender,omitempty"`
	DOB      *time.Time `json:"dob,omitempty"`
	Role     Role       `gorm:"type:VARCHAR(10);default:'user'" json:"role"`

	IsVerified bool       `json:"is_verified"`
	EmailOTP   string     `json:"-"`
	MobileOTP  string     `json:"-"`
	OTPExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SetPassword hashes and stores the plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// ComparePassword reports whether plain matches the stored hash. Fails closed
// when no password is set (social-login accounts).
func (u *User) ComparePassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// MobileNumber returns the mobile number or "" when none is set.
func (u *User) MobileNumber() string {
	if u.Mobile == nil {
		return ""
	}
	return *u.Mobile
}

// SetOTP replaces the stored code pair as a unit. Passing "" for a channel
// clears that channel, so a single-channel login invalidates any stale code
// previously bound to the other channel.
func (u *User) SetOTP(emailCode, mobileCode string, expires time.Time) {
	u.EmailOTP = emailCode
	u.MobileOTP = mobileCode
	u.OTPExpires = &expires
}

// ClearOTP wipes all OTP state after a successful verification.
func (u *User) ClearOTP() {
	u.EmailOTP = ""
	u.MobileOTP = ""
	u.OTPExpires = nil
}

// OTPExpired reports whether the stored codes are past their expiry at the
// given instant. No stored expiry counts as expired.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpires == nil || now.After(*u.OTPExpires)
}
