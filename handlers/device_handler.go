// handlers/device_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

const unknownUserName = "Unknown User"

// deviceSortFields whitelists sortable columns.
var deviceSortFields = map[string]bool{
	"serialNumber": true,
	"category":     true,
	"model":        true,
	"status":       true,
	"createdAt":    true,
}

type deviceSummary struct {
	ID            string `json:"id"`
	SerialNumber  string `json:"serialNumber"`
	Category      string `json:"category"`
	Model         string `json:"model,omitempty"`
	Status        string `json:"status,omitempty"`
	CurrentHolder string `json:"currentHolder,omitempty"`
}

// ListDevices returns a page of devices: GET /api/devices
func ListDevices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 0 {
		page = 0
	}
	pageSize, err := strconv.Atoi(query.Get("pageSize"))
	if err != nil || pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}

	filter := bson.M{}
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"serialNumber": pattern},
			bson.M{"category": pattern},
			bson.M{"model": pattern},
			bson.M{"users.badgeNumber": pattern},
		}
	}

	sortField := query.Get("sortField")
	if !deviceSortFields[sortField] {
		sortField = "serialNumber"
	}
	sortOrder := 1
	if query.Get("sortOrder") == "desc" {
		sortOrder = -1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := deviceCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("devices CountDocuments error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := deviceCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("devices Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	if err := cursor.All(ctx, &devices); err != nil {
		log.Printf("devices decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode devices")
		return
	}

	summaries := make([]deviceSummary, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		s := deviceSummary{
			ID:           d.ID.Hex(),
			SerialNumber: d.SerialNumber,
			Category:     d.Category,
			Model:        d.Model,
			Status:       d.Status,
		}
		if holder := d.CurrentHolder(); holder != nil {
			s.CurrentHolder = holder.BadgeNumber
		}
		summaries = append(summaries, s)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"devices": summaries,
		"total":   total,
	})
}

// AssignmentView is an assignment enriched with the holder's name. Badge
// numbers are soft references; a badge with no matching user renders as
// "Unknown User" instead of failing.
type AssignmentView struct {
	models.Assignment
	UserName string `json:"userName"`
}

type deviceDetail struct {
	models.Device
	CurrentHolder *AssignmentView  `json:"currentHolder"`
	History       []AssignmentView `json:"history"`
}

// GetDevice returns one device with derived holder state:
// GET /api/devices/{serialNumber}
func GetDevice(w http.ResponseWriter, r *http.Request) {
	serialNumber := mux.Vars(r)["serialNumber"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var device models.Device
	err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": serialNumber}).Decode(&device)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Device not found")
		return
	}
	if err != nil {
		log.Printf("device FindOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	names := lookupUserNames(ctx, &device)

	detail := deviceDetail{Device: device}
	if holder := device.CurrentHolder(); holder != nil {
		detail.CurrentHolder = &AssignmentView{Assignment: *holder, UserName: names[holder.BadgeNumber]}
	}
	history := device.History()
	detail.History = make([]AssignmentView, 0, len(history))
	for _, a := range history {
		detail.History = append(detail.History, AssignmentView{Assignment: a, UserName: names[a.BadgeNumber]})
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// lookupUserNames resolves every badge in the device's history to a user
// name in one query. Missing users map to "Unknown User".
func lookupUserNames(ctx context.Context, device *models.Device) map[string]string {
	names := make(map[string]string, len(device.Assignments))
	badges := make([]string, 0, len(device.Assignments))
	for i := range device.Assignments {
		badge := device.Assignments[i].BadgeNumber
		if _, seen := names[badge]; !seen {
			names[badge] = unknownUserName
			badges = append(badges, badge)
		}
	}
	if len(badges) == 0 {
		return names
	}

	cursor, err := userCollection.Find(ctx, bson.M{"badgeNumber": bson.M{"$in": badges}})
	if err != nil {
		log.Printf("user name lookup error: %v", err)
		return names
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		log.Printf("user name decode error: %v", err)
		return names
	}
	for i := range users {
		names[users[i].BadgeNumber] = users[i].Name
	}
	return names
}

// CreateDevice registers a new device: POST /api/devices/new
func CreateDevice(w http.ResponseWriter, r *http.Request) {
	serialNumber := strings.TrimSpace(r.FormValue("serialNumber"))
	category := strings.TrimSpace(r.FormValue("category"))

	if serialNumber == "" || category == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": serialNumber}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Serial Number already exists")
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("device duplicate check error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	device := models.Device{
		SerialNumber:  serialNumber,
		Category:      category,
		Model:         strings.TrimSpace(r.FormValue("model")),
		Description:   strings.TrimSpace(r.FormValue("description")),
		Manufacture:   strings.TrimSpace(r.FormValue("manufacture")),
		Status:        strings.TrimSpace(r.FormValue("status")),
		InvoiceNumber: strings.TrimSpace(r.FormValue("invoiceNumber")),
		Supplier:      strings.TrimSpace(r.FormValue("supplier")),
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := deviceCollection.InsertOne(ctx, device); err != nil {
		log.Printf("device InsertOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create device")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Device created successfully"})
}
