package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ali-alhashim/next-it/config"
	"github.com/ali-alhashim/next-it/database"
	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	CtxBadgeNumber = "badgeNumber"
	CtxUserName    = "userName"
	CtxUserRole    = "userRole"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Websocket upgrades authenticate via query token in the handler.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(tokenString)
		if err != nil || claims == nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// The token is only as good as the user behind it; a deleted or
		// renamed badge must not keep working until expiry.
		var user models.User
		err = database.Client.Database(config.DatabaseName).Collection("users").
			FindOne(r.Context(), bson.M{"badgeNumber": claims.BadgeNumber}).Decode(&user)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), CtxBadgeNumber, user.BadgeNumber)
		ctx = context.WithValue(ctx, CtxUserName, user.Name)
		ctx = context.WithValue(ctx, CtxUserRole, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
