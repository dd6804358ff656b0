// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ali-alhashim/next-it/config"
	"github.com/ali-alhashim/next-it/database"
)

var (
	deviceCollection *mongo.Collection
	userCollection   *mongo.Collection
)

func InitCollections() {
	db := database.Client.Database(config.DatabaseName)
	deviceCollection = db.Collection("devices")
	userCollection = db.Collection("users")
}

// UserCollection exposes the users collection for startup seeding.
func UserCollection() *mongo.Collection {
	return userCollection
}
