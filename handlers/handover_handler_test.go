package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ali-alhashim/next-it/models"
)

func TestOpenAssignmentFilter(t *testing.T) {
	filter := openAssignmentFilter("SN-100", "B1")

	assert.Equal(t, "SN-100", filter["serialNumber"])

	elem, ok := filter["users"].(bson.M)
	require.True(t, ok)
	match, ok := elem["$elemMatch"].(bson.M)
	require.True(t, ok, "badge and open state must match the same array element")

	assert.Equal(t, "B1", match["badgeNumber"])

	in, ok := match["handoverDate"].(bson.M)
	require.True(t, ok)
	// All three legacy spellings of "open" must stay matchable, or closed
	// legacy rows could be closed twice.
	assert.Equal(t, bson.A{nil, "", "NULL"}, in["$in"])
}

func TestCloseAssignmentUpdateWithoutNote(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	update := closeAssignmentUpdate(date, nil)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, date, set["users.$.handoverDate"])

	_, hasNote := set["users.$.note"]
	assert.False(t, hasNote, "omitted note must not clobber the stored note")
}

func TestCloseAssignmentUpdateWithNote(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	note := "returned working"
	update := closeAssignmentUpdate(date, &note)

	set := update["$set"].(bson.M)
	assert.Equal(t, "returned working", set["users.$.note"], "note replaces, never appends")
}

func TestCloseAssignmentUpdateWithEmptyNote(t *testing.T) {
	// An explicitly empty note is still a provided note and clears the field.
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	note := ""
	update := closeAssignmentUpdate(date, &note)

	set := update["$set"].(bson.M)
	value, hasNote := set["users.$.note"]
	require.True(t, hasNote)
	assert.Equal(t, "", value)
}

func TestAppendAssignmentFilter(t *testing.T) {
	filter := appendAssignmentFilter("SN-300", "B9")

	assert.Equal(t, "SN-300", filter["serialNumber"])

	guard, ok := filter["users.badgeNumber"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "B9", guard["$ne"], "a badge already in the history must not match")
}

func TestAppendAssignmentUpdate(t *testing.T) {
	a := models.Assignment{
		BadgeNumber:  "B9",
		ReceivedDate: models.Date{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		CreatedAt:    time.Now().UTC(),
	}
	update := appendAssignmentUpdate(a)

	push, ok := update["$push"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, a, push["users"])
}
