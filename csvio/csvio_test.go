package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRowsHeaderMapped(t *testing.T) {
	input := "serialNumber,badgeNumber,receivedDate,handoverDate,note\n" +
		"SN-100, B1 ,2024-01-01,NULL,first laptop\n" +
		"SN-200,B2,2023-07-01,,\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SN-100", rows[0].Get("serialNumber"))
	assert.Equal(t, "B1", rows[0].Get("badgeNumber"), "fields are trimmed")
	assert.Equal(t, "NULL", rows[0].Get("handoverDate"))
	assert.Equal(t, "first laptop", rows[0].Get("note"))

	assert.Equal(t, "", rows[1].Get("handoverDate"))
	assert.Equal(t, "", rows[1].Get("nonexistent"), "unknown columns read as empty")
}

func TestReadRowsIgnoresUnknownColumnsAndBlankLines(t *testing.T) {
	input := "serialNumber,category,favoriteColor\n" +
		"SN-1,laptop,blue\n" +
		"\n" +
		"SN-2,monitor,green\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SN-2", rows[1].Get("serialNumber"))
	// Unrecognized columns are carried but harmless; consumers only read
	// the columns they know.
	assert.Equal(t, "green", rows[1].Get("favoriteColor"))
}

func TestReadRowsShortAndLongRows(t *testing.T) {
	input := "serialNumber,category,model\n" +
		"SN-1,laptop\n" +
		"SN-2,monitor,M27,extra,fields\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "", rows[0].Get("model"), "short rows pad with empty fields")
	assert.Equal(t, "M27", rows[1].Get("model"), "long rows drop the extras")
}

func TestReadRowsQuotedFields(t *testing.T) {
	input := `serialNumber,note` + "\n" +
		`SN-1,"returned, slightly ""scratched"""` + "\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `returned, slightly "scratched"`, rows[0].Get("note"))
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	headerOnly, err := ReadRows(strings.NewReader("serialNumber,category\n"))
	require.NoError(t, err)
	assert.Empty(t, headerOnly)
}

func TestWriteQuotesAndEscapes(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf,
		[]string{"serialNumber", "note"},
		[][]string{{"SN-1", `has "quotes", and comma`}},
	)
	require.NoError(t, err)

	got := buf.String()
	assert.Equal(t, "serialNumber,note\nSN-1,\"has \"\"quotes\"\", and comma\"\n", got)
}

func TestWriteReadRoundTrip(t *testing.T) {
	header := []string{"badgeNumber", "name", "email", "role"}
	records := [][]string{
		{"1001", "Alice, A.", "alice@example.com", "admin"},
		{"1002", `Bob "The Builder"`, "bob@example.com", "user"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, header, records))

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice, A.", rows[0].Get("name"))
	assert.Equal(t, `Bob "The Builder"`, rows[1].Get("name"))
}
