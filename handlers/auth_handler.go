// handlers/auth_handler.go
package handlers

import (
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

// Login authenticates a badge number + password pair and issues a JWT.
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		BadgeNumber string `json:"badgeNumber"`
		Password    string `json:"password"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.BadgeNumber = strings.TrimSpace(creds.BadgeNumber)
	if creds.BadgeNumber == "" || creds.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	var user models.User
	err := userCollection.FindOne(r.Context(), bson.M{"badgeNumber": creds.BadgeNumber}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Burn a comparable amount of time so unknown badges are not
			// distinguishable from wrong passwords.
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid badge number or password")
			return
		}
		log.Printf("Database error during login: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Authentication service unavailable")
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid badge number or password")
		return
	}

	token, err := utils.GenerateJWT(user.BadgeNumber, user.Name, user.Role)
	if err != nil {
		log.Printf("JWT generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	user.PasswordHash = ""
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Logout acknowledges the logout; tokens are stateless so there is nothing
// to revoke server-side.
func Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ValidateToken checks a bearer token without a database round trip.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil || claims == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":       true,
		"badgeNumber": claims.BadgeNumber,
		"name":        claims.Name,
		"role":        claims.Role,
	})
}
