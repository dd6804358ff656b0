// handlers/import_export_handler.go
//
// CSV bulk import and export. Import is per-row best effort: bad or
// duplicate rows are skipped, the batch never aborts, and the response
// counts what was actually written.
package handlers

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ali-alhashim/next-it/csvio"
	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
)

const maxImportUpload = 32 << 20

var (
	deviceExportHeader = []string{"serialNumber", "category", "model", "description", "manufacture", "status", "invoiceNumber", "supplier"}
	userExportHeader   = []string{"badgeNumber", "name", "email", "role", "createdAt"}
)

// readCSVUpload extracts and parses the "csv" file from a multipart upload.
func readCSVUpload(w http.ResponseWriter, r *http.Request) ([]csvio.Row, bool) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid content type")
		return nil, false
	}
	if err := r.ParseMultipartForm(maxImportUpload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return nil, false
	}

	file, _, err := r.FormFile("csv")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	defer file.Close()

	rows, err := csvio.ReadRows(file)
	if err != nil {
		log.Printf("CSV parse error: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse CSV")
		return nil, false
	}
	return rows, true
}

// ImportDevices bulk-creates devices: POST /api/devices/import
// Rows with a blank or already-known serial number are skipped.
func ImportDevices(w http.ResponseWriter, r *http.Request) {
	rows, ok := readCSVUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var toInsert []interface{}
	for _, row := range rows {
		serialNumber := row.Get("serialNumber")
		if serialNumber == "" {
			continue
		}
		err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": serialNumber}).Err()
		if err == nil {
			continue // already exists
		}
		if err != mongo.ErrNoDocuments {
			log.Printf("device import lookup error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
			return
		}

		toInsert = append(toInsert, models.Device{
			SerialNumber: serialNumber,
			Category:     row.Get("category"),
			Model:        row.Get("model"),
			Description:  row.Get("description"),
			Manufacture:  row.Get("manufacture"),
			Status:       row.Get("status"),
			CreatedAt:    time.Now().UTC(),
		})
	}

	if len(toInsert) > 0 {
		if _, err := deviceCollection.InsertMany(ctx, toInsert); err != nil {
			log.Printf("device InsertMany error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to import devices")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(toInsert),
	})
}

// ImportDeviceUsers bulk-appends assignments: POST /api/devices/import-users
//
// This is the only bulk path that creates assignments. A row is skipped when
// the device does not exist or when the badge already appears anywhere in
// that device's history — even with a different received date. Re-importing
// the same file is therefore a no-op rather than a history rewrite.
func ImportDeviceUsers(w http.ResponseWriter, r *http.Request) {
	rows, ok := readCSVUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	addedCount := 0
	for _, row := range rows {
		serialNumber := row.Get("serialNumber")
		badgeNumber := row.Get("badgeNumber")
		if serialNumber == "" || badgeNumber == "" {
			continue
		}

		var receivedDate models.Date
		if raw := row.Get("receivedDate"); raw != "" {
			parsed, err := models.ParseDate(raw)
			if err != nil {
				continue
			}
			receivedDate = models.Date{Time: parsed}
		}

		handoverDate, err := models.ParseHandover(row.Get("handoverDate"))
		if err != nil {
			continue
		}

		assignment := models.Assignment{
			BadgeNumber:  badgeNumber,
			ReceivedDate: receivedDate,
			HandoverDate: handoverDate,
			Note:         row.Get("note"),
			CreatedAt:    time.Now().UTC(),
		}

		// One conditional update per row: appends only when the device
		// exists and the badge is new to it. A miss on either condition
		// just leaves the count untouched; no device is ever created here.
		result, err := deviceCollection.UpdateOne(ctx,
			appendAssignmentFilter(serialNumber, badgeNumber),
			appendAssignmentUpdate(assignment),
		)
		if err != nil {
			log.Printf("assignment import error (%s/%s): %v", serialNumber, badgeNumber, err)
			continue
		}
		if result.ModifiedCount > 0 {
			addedCount++
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"addedCount": addedCount,
	})
}

// ImportUsers bulk-creates users: POST /api/users/import
// Imported users get a random generated password; duplicates skip by badge.
func ImportUsers(w http.ResponseWriter, r *http.Request) {
	rows, ok := readCSVUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	var toInsert []interface{}
	for _, row := range rows {
		badgeNumber := row.Get("badgeNumber")
		if badgeNumber == "" {
			continue
		}
		err := userCollection.FindOne(ctx, bson.M{"badgeNumber": badgeNumber}).Err()
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			log.Printf("user import lookup error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
			return
		}

		hash, err := utils.HashPassword(utils.GenerateRandomPassword(12))
		if err != nil {
			log.Printf("user import hash error: %v", err)
			continue
		}

		toInsert = append(toInsert, models.User{
			BadgeNumber:  badgeNumber,
			Name:         row.Get("name"),
			Email:        row.Get("email"),
			Role:         models.NormalizeRole(row.Get("role")),
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		})
	}

	if len(toInsert) > 0 {
		if _, err := userCollection.InsertMany(ctx, toInsert); err != nil {
			log.Printf("user InsertMany error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to import users")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(toInsert),
	})
}

// ExportDevices streams all devices as CSV: GET /api/devices/export
func ExportDevices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	cursor, err := deviceCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "serialNumber", Value: 1}}))
	if err != nil {
		log.Printf("device export Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	if err := cursor.All(ctx, &devices); err != nil {
		log.Printf("device export decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode devices")
		return
	}

	records := make([][]string, 0, len(devices))
	for i := range devices {
		d := &devices[i]
		records = append(records, []string{
			d.SerialNumber, d.Category, d.Model, d.Description,
			d.Manufacture, d.Status, d.InvoiceNumber, d.Supplier,
		})
	}

	writeCSVResponse(w, "devices.csv", deviceExportHeader, records)
}

// ExportUsers streams all users as CSV: GET /api/users/export
// Password hashes never leave the database.
func ExportUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	cursor, err := userCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "badgeNumber", Value: 1}}))
	if err != nil {
		log.Printf("user export Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		log.Printf("user export decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode users")
		return
	}

	records := make([][]string, 0, len(users))
	for i := range users {
		u := &users[i]
		records = append(records, []string{
			u.BadgeNumber, u.Name, u.Email, u.Role,
			u.CreatedAt.UTC().Format("2006-01-02"),
		})
	}

	writeCSVResponse(w, "users.csv", userExportHeader, records)
}

func writeCSVResponse(w http.ResponseWriter, filename string, header []string, records [][]string) {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, header, records); err != nil {
		log.Printf("CSV write error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to build CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
