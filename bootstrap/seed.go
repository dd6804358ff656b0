// bootstrap/seed.go
// Package bootstrap holds one-time process initialization.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

const (
	adminBadgeNumber = "0000"
	adminPassword    = "admin"
)

// SeedAdmin makes sure the built-in administrator exists. It runs once at
// startup as an upsert with $setOnInsert, so concurrent instances cannot
// double-insert and an existing admin (including a changed password) is
// never touched.
func SeedAdmin(ctx context.Context, users *mongo.Collection) error {
	hash, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := users.UpdateOne(ctx,
		bson.M{"badgeNumber": adminBadgeNumber},
		bson.M{"$setOnInsert": bson.M{
			"badgeNumber": adminBadgeNumber,
			"name":        "Administrator",
			"role":        models.RoleAdmin,
			"password":    hash,
			"createdAt":   time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	if result.UpsertedCount > 0 {
		log.Println("Seed: admin user created")
	} else {
		log.Println("Seed: admin already exists")
	}
	return nil
}
