// handlers/user_handler.go
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ali-alhashim/next-it/config"
	"github.com/ali-alhashim/next-it/imaging"
	"github.com/ali-alhashim/next-it/middleware"
	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

// maxPhotoUpload caps the in-memory part of a user-create form.
const maxPhotoUpload = 10 << 20

// ListUsers returns a page of users: GET /api/users
func ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 0 {
		page = 0
	}
	pageSize, err := strconv.Atoi(query.Get("pageSize"))
	if err != nil || pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := userCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("users CountDocuments error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "badgeNumber", Value: 1}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := userCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("users Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		log.Printf("users decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode users")
		return
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	if users == nil {
		users = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

// GetUser returns one user: GET /api/users/{badgeNumber}
func GetUser(w http.ResponseWriter, r *http.Request) {
	badgeNumber := mux.Vars(r)["badgeNumber"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"badgeNumber": badgeNumber}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("user FindOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	user.PasswordHash = ""
	utils.RespondWithJSON(w, http.StatusOK, user)
}

// CreateUser registers a new user: POST /api/users/new (multipart form,
// optional photo).
func CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoUpload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	badgeNumber := strings.TrimSpace(r.FormValue("badgeNumber"))
	email := strings.TrimSpace(r.FormValue("email"))
	role := r.FormValue("role")
	password := r.FormValue("password")

	if name == "" || badgeNumber == "" || email == "" || role == "" || password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := userCollection.FindOne(ctx, bson.M{"badgeNumber": badgeNumber}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Badge number already exists")
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("user duplicate check error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("password hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Password processing failed")
		return
	}

	photoPath := ""
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoPath, err = savePhoto(badgeNumber, file)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	user := models.User{
		BadgeNumber:  badgeNumber,
		Name:         name,
		Email:        email,
		Role:         models.NormalizeRole(role),
		PasswordHash: hash,
		Photo:        photoPath,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		log.Printf("user InsertOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User created successfully"})
}

// savePhoto validates, downscales and stores an uploaded photo, returning
// the public path.
func savePhoto(badgeNumber string, file io.Reader) (string, error) {
	data, err := imaging.Process(file)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(config.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}

	fileName := fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), badgeNumber)
	if err := os.WriteFile(filepath.Join(config.UploadsDir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}
	return "/uploads/" + fileName, nil
}

// ResetPassword sets a new password for a user (admin only):
// POST /api/users/reset-password/{badgeNumber}
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(middleware.CtxUserRole).(string)
	if role != models.RoleAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Only admin can reset passwords")
		return
	}

	badgeNumber := mux.Vars(r)["badgeNumber"]

	var body struct {
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &body); err != nil || body.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		log.Printf("password hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Password processing failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.UpdateOne(ctx,
		bson.M{"badgeNumber": badgeNumber},
		bson.M{"$set": bson.M{"password": hash}},
	)
	if err != nil {
		log.Printf("reset password error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetCurrentUser returns the authenticated principal: GET /api/user/me
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	badgeNumber, ok := r.Context().Value(middleware.CtxBadgeNumber).(string)
	if !ok || badgeNumber == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not logged in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"badgeNumber": badgeNumber}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	user.PasswordHash = ""
	utils.RespondWithJSON(w, http.StatusOK, user)
}
