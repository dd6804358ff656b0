package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type handoverDoc struct {
	HandoverDate HandoverDate `bson:"handoverDate"`
}

func decodeHandover(t *testing.T, value interface{}) HandoverDate {
	t.Helper()
	raw, err := bson.Marshal(bson.D{{Key: "handoverDate", Value: value}})
	require.NoError(t, err)

	var doc handoverDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc.HandoverDate
}

func TestHandoverDateOpenSentinels(t *testing.T) {
	// null, "" and "NULL" are three legacy spellings of the same state.
	for _, value := range []interface{}{nil, "", "NULL", "null", " NULL "} {
		h := decodeHandover(t, value)
		assert.True(t, h.Open(), "value %#v should decode as open", value)
	}
}

func TestHandoverDateClosedValues(t *testing.T) {
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	fromTime := decodeHandover(t, want)
	assert.False(t, fromTime.Open())
	assert.Equal(t, want, fromTime.Time)

	fromString := decodeHandover(t, "2024-06-01")
	assert.False(t, fromString.Open())
	assert.Equal(t, want, fromString.Time)
}

func TestHandoverDateMarshalsOpenAsNull(t *testing.T) {
	raw, err := bson.Marshal(handoverDoc{})
	require.NoError(t, err)

	var out bson.M
	require.NoError(t, bson.Unmarshal(raw, &out))

	value, present := out["handoverDate"]
	require.True(t, present)
	assert.Nil(t, value, "open handover must encode as bson null, not a sentinel string")
}

func TestHandoverDateBSONRoundTrip(t *testing.T) {
	in := handoverDoc{HandoverDate: ClosedOn(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out handoverDoc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in.HandoverDate, out.HandoverDate)
}

func TestHandoverDateJSON(t *testing.T) {
	open, err := json.Marshal(HandoverDate{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(open))

	closed, err := json.Marshal(ClosedOn(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01"`, string(closed))

	var parsed HandoverDate
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &parsed))
	assert.False(t, parsed.Open())

	require.NoError(t, json.Unmarshal([]byte(`null`), &parsed))
	assert.True(t, parsed.Open())
}

func TestParseDateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{" 2024-01-02 ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024/01/02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"02-01-2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	_, err := ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestParseHandover(t *testing.T) {
	open, err := ParseHandover("NULL")
	require.NoError(t, err)
	assert.True(t, open.Open())

	closed, err := ParseHandover("2023-06-01")
	require.NoError(t, err)
	assert.False(t, closed.Open())

	_, err = ParseHandover("garbage")
	assert.Error(t, err)
}

func TestDateDecodesStringAndDatetime(t *testing.T) {
	type doc struct {
		ReceivedDate Date `bson:"receivedDate"`
	}

	fromString, err := bson.Marshal(bson.D{{Key: "receivedDate", Value: "2023-07-01"}})
	require.NoError(t, err)
	var a doc
	require.NoError(t, bson.Unmarshal(fromString, &a))
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), a.ReceivedDate.Time)

	fromTime, err := bson.Marshal(bson.D{{Key: "receivedDate", Value: a.ReceivedDate.Time}})
	require.NoError(t, err)
	var b doc
	require.NoError(t, bson.Unmarshal(fromTime, &b))
	assert.Equal(t, a.ReceivedDate, b.ReceivedDate)
}

func TestDateOrdering(t *testing.T) {
	early := Date{Time: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	late := Date{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))

	// Unknown dates sort before every real date.
	assert.True(t, Date{}.Before(early))
}
