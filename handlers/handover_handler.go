// handlers/handover_handler.go
//
// The assignment/handover engine. Every mutation here is a single
// conditional UpdateOne so the store's compare-and-set is the only
// serialization point: two concurrent handover requests for the same open
// assignment cannot both match.
package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ali-alhashim/next-it/models"
	"github.com/ali-alhashim/next-it/utils"
	"github.com/ali-alhashim/next-it/websocket"
)

// openSentinels are the stored spellings of "assignment still open". Legacy
// documents mix all three, so conditional updates must match every one.
var openSentinels = bson.A{nil, "", "NULL"}

// openAssignmentFilter matches a device that has an assignment for
// badgeNumber which is still open. $elemMatch ties both conditions to the
// same array element, and anchors the positional $ in the update to it.
func openAssignmentFilter(serialNumber, badgeNumber string) bson.M {
	return bson.M{
		"serialNumber": serialNumber,
		"users": bson.M{"$elemMatch": bson.M{
			"badgeNumber":  badgeNumber,
			"handoverDate": bson.M{"$in": openSentinels},
		}},
	}
}

// closeAssignmentUpdate closes the matched assignment. The note replaces the
// stored note only when the caller supplied one.
func closeAssignmentUpdate(handoverDate time.Time, note *string) bson.M {
	set := bson.M{"users.$.handoverDate": handoverDate.UTC()}
	if note != nil {
		set["users.$.note"] = *note
	}
	return bson.M{"$set": set}
}

// appendAssignmentFilter matches a device whose history does not already
// contain badgeNumber. Re-assigning a known badge is refused atomically,
// consistent with the import dedupe rule.
func appendAssignmentFilter(serialNumber, badgeNumber string) bson.M {
	return bson.M{
		"serialNumber":      serialNumber,
		"users.badgeNumber": bson.M{"$ne": badgeNumber},
	}
}

func appendAssignmentUpdate(a models.Assignment) bson.M {
	return bson.M{"$push": bson.M{"users": a}}
}

// SendHandoverRequest closes an open assignment: POST /api/devices/send-handover-request
func SendHandoverRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SerialNumber string  `json:"serialNumber"`
		BadgeNumber  string  `json:"badgeNumber"`
		HandoverDate string  `json:"handoverDate"`
		Note         *string `json:"note"`
	}
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	body.SerialNumber = strings.TrimSpace(body.SerialNumber)
	body.BadgeNumber = strings.TrimSpace(body.BadgeNumber)
	if body.SerialNumber == "" || body.BadgeNumber == "" || strings.TrimSpace(body.HandoverDate) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields: serialNumber, badgeNumber, handoverDate")
		return
	}

	handoverDate, err := models.ParseDate(body.HandoverDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid handoverDate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := deviceCollection.UpdateOne(ctx,
		openAssignmentFilter(body.SerialNumber, body.BadgeNumber),
		closeAssignmentUpdate(handoverDate, body.Note),
	)
	if err != nil {
		log.Printf("handover UpdateOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process handover")
		return
	}

	// A zero match never says why: missing device, badge that never held
	// it, and an already-closed assignment are indistinguishable here.
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Device or user not found, or handover already completed")
		return
	}

	var device models.Device
	if err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": body.SerialNumber}).Decode(&device); err != nil {
		log.Printf("handover follow-up read error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Handover applied but device read failed")
		return
	}

	websocket.SendHandoverCompleted(body.SerialNumber, body.BadgeNumber, handoverDate)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Handover request processed successfully",
		"device":  device,
	})
}

// AssignUser appends a new open assignment: POST /api/devices/{serialNumber}/users
func AssignUser(w http.ResponseWriter, r *http.Request) {
	serialNumber := mux.Vars(r)["serialNumber"]

	var body struct {
		BadgeNumber  string `json:"badgeNumber"`
		ReceivedDate string `json:"receivedDate"`
		Note         string `json:"note"`
	}
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	body.BadgeNumber = strings.TrimSpace(body.BadgeNumber)
	if body.BadgeNumber == "" || strings.TrimSpace(body.ReceivedDate) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields: badgeNumber, receivedDate")
		return
	}

	receivedDate, err := models.ParseDate(body.ReceivedDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid receivedDate")
		return
	}

	assignment := models.Assignment{
		BadgeNumber:  body.BadgeNumber,
		ReceivedDate: models.Date{Time: receivedDate},
		Note:         body.Note,
		CreatedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := deviceCollection.UpdateOne(ctx,
		appendAssignmentFilter(serialNumber, body.BadgeNumber),
		appendAssignmentUpdate(assignment),
	)
	if err != nil {
		log.Printf("assign UpdateOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to assign user")
		return
	}

	if result.MatchedCount == 0 {
		// Follow-up read to tell "no such device" from "badge already in
		// history"; the conditional update itself cannot.
		err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": serialNumber}).Err()
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Device not found")
			return
		}
		if err != nil {
			log.Printf("assign follow-up read error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to assign user")
			return
		}
		utils.RespondWithError(w, http.StatusConflict, "User already in device history")
		return
	}

	var device models.Device
	if err := deviceCollection.FindOne(ctx, bson.M{"serialNumber": serialNumber}).Decode(&device); err != nil {
		log.Printf("assign follow-up read error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Assignment applied but device read failed")
		return
	}

	websocket.SendAssignmentCreated(serialNumber, body.BadgeNumber, assignment)

	utils.RespondWithJSON(w, http.StatusOK, device)
}
