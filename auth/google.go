package auth

import (
	"context"
	"errors"
	"log"
	"net/url"
	"os"

	firebase "firebase.google.com/go"
	firebaseauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

// ExternalProfile is what a verified Google identity gives us.
type ExternalProfile struct {
	ExternalID string
	Email      string
	Name       string
	Avatar     string
}

// TokenVerifier turns a client-supplied Google ID token into a profile.
// Implemented by FirebaseVerifier in production and by fakes in tests.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalProfile, error)
}

// FirebaseVerifier checks Google ID tokens through the Firebase Admin SDK.
type FirebaseVerifier struct {
	client    *firebaseauth.Client
	projectID string
}

// NewFirebaseVerifier initializes the Firebase app from env. Fatal on missing
// configuration: OAuth login cannot work without it.
func NewFirebaseVerifier(ctx context.Context) *FirebaseVerifier {
	credsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	if credsJSON == "" {
		log.Fatal("❌ FIREBASE_CREDENTIALS_JSON must be set")
	}
	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		log.Fatal("❌ FIREBASE_PROJECT_ID must be set")
	}

	opt := option.WithCredentialsJSON([]byte(credsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		log.Fatalf("❌ Error initializing Firebase app: %v", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("❌ Error getting Firebase Auth client: %v", err)
	}
	return &FirebaseVerifier{client: client, projectID: projectID}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*ExternalProfile, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if token.Audience != v.projectID {
		return nil, errors.New("invalid token audience")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("token carries no email")
	}
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	return &ExternalProfile{
		ExternalID: token.UID,
		Email:      email,
		Name:       name,
		Avatar:     picture,
	}, nil
}

// linkOrCreateUser resolves an external profile to a local account:
// match by google id, else attach to the account holding the same email,
// else create a new pre-verified user. Runs in one transaction so a failed
// link leaves nothing half-written.
func linkOrCreateUser(db *gorm.DB, profile *ExternalProfile) (*models.User, error) {
	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", profile.ExternalID).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", profile.Email).First(&user).Error
		if err == nil {
			// Existing password account: attach the Google identity.
			updates := map[string]interface{}{"google_id": profile.ExternalID}
			if user.Avatar == "" && profile.Avatar != "" {
				updates["avatar"] = profile.Avatar
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
			user.GoogleID = &profile.ExternalID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Google vouches for the email, so the account starts verified.
		user = models.User{
			Name:       profile.Name,
			Email:      profile.Email,
			GoogleID:   &profile.ExternalID,
			Avatar:     profile.Avatar,
			IsVerified: true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GoogleLoginHandler verifies the supplied ID token, links or creates the
// local account, then redirects to the frontend callback with the session
// token and basic profile in the query string.
func GoogleLoginHandler(db *gorm.DB, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken := c.Query("id_token")
		if idToken == "" {
			var req struct {
				IDToken string `json:"idToken"`
			}
			if err := c.ShouldBindJSON(&req); err == nil {
				idToken = req.IDToken
			}
		}
		if idToken == "" {
			apperrors.Respond(c, apperrors.BadRequest("id token is required"))
			return
		}

		profile, err := verifier.Verify(c.Request.Context(), idToken)
		if err != nil {
			apperrors.Respond(c, apperrors.Unauthorized("Invalid Google ID token"))
			return
		}

		user, err := linkOrCreateUser(db, profile)
		if err != nil {
			log.Printf("❌ Google login failed for %s: %v", profile.Email, err)
			apperrors.Respond(c, apperrors.Unauthorized("Authentication failed"))
			return
		}

		token, err := IssueToken(user)
		if err != nil {
			apperrors.Respond(c, apperrors.Unauthorized("Authentication failed"))
			return
		}

		frontendURL := os.Getenv("FRONTEND_URL")
		if frontendURL == "" {
			frontendURL = "http://localhost:5173"
		}
		q := url.Values{}
		q.Set("token", token)
		q.Set("userId", user.ID)
		q.Set("name", user.Name)
		q.Set("email", user.Email)
		c.Redirect(302, frontendURL+"/auth/callback?"+q.Encode())
	}
}
