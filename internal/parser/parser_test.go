package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtol-medical-drone-system/internal/logging"
	"vtol-medical-drone-system/internal/models"
)

const manifestCSV = `type,quantity,min_threshold,location,expiry_date
Blood Bags,12,20,Storage-1,2026-03-01
IV Fluids, 80, 25, Storage-2, 2026-03-01T08:00:00Z
,10,5,Storage-3,2026-03-01
Bandages,lots,5,Storage-3,2026-03-01
`

func TestParseCSV(t *testing.T) {
	items, err := NewParser("csv", logging.Nop()).Parse(strings.NewReader(manifestCSV))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Blood Bags", items[0].Type)
	assert.Equal(t, 12, items[0].Quantity)
	assert.Equal(t, models.StockLow, items[0].Status)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), items[0].ExpiryDate)

	assert.Equal(t, "IV Fluids", items[1].Type)
	assert.Equal(t, models.StockGood, items[1].Status)
	assert.Equal(t, 8, items[1].ExpiryDate.Hour())
}

func TestParseCSV_MissingTypeColumn(t *testing.T) {
	_, err := NewParser("csv", logging.Nop()).Parse(strings.NewReader("quantity,location\n1,x\n"))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		input := `[{"type":"Antibiotics","quantity":30,"min_threshold":40,"location":"Storage-4","expiry_date":"2026-01-01T00:00:00Z"}]`
		items, err := NewParser("json", logging.Nop()).Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, models.StockLow, items[0].Status)
	})

	t.Run("array with date only and unix expiry", func(t *testing.T) {
		input := `[
			{"type":"IV Fluids","quantity":80,"min_threshold":25,"location":"Storage-1","expiry_date":"2027-01-01"},
			{"type":"IV Fluids","quantity":10,"min_threshold":25,"location":"Storage-2","expiry_date":"1767225600"}
		]`
		items, err := NewParser("json", logging.Nop()).Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), items[0].ExpiryDate)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), items[1].ExpiryDate)
		assert.Equal(t, models.StockLow, items[1].Status)
	})

	t.Run("malformed array", func(t *testing.T) {
		_, err := NewParser("json", logging.Nop()).Parse(strings.NewReader(`[{"type":"IV Fluids","quantity":"many"}]`))
		assert.ErrorContains(t, err, "invalid JSON array")
	})

	t.Run("lines", func(t *testing.T) {
		input := `{"type":"Antibiotics","quantity":30,"min_threshold":20}
not json
{"type":"Stretchers","quantity":4,"min_threshold":2}
`
		items, err := NewParser("json", logging.Nop()).Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Stretchers", items[1].Type)
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	require.NoError(t, os.WriteFile(path, []byte(manifestCSV), 0o644))

	items, err := NewParser("CSV", logging.Nop()).ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = NewParser("csv", logging.Nop()).ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = NewParser("xml", logging.Nop()).ParseFile(path)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestParseTimestamp(t *testing.T) {
	ts, err := parseTimestamp("1767225600")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ts)

	_, err = parseTimestamp("next tuesday")
	assert.Error(t, err)
}

func TestValidateSupply(t *testing.T) {
	ok := models.SupplyItem{Type: "IV Fluids", Quantity: 10, MinThreshold: 5, ExpiryDate: time.Now()}
	assert.Empty(t, ValidateSupply(&ok))

	bad := models.SupplyItem{Quantity: -1, MinThreshold: -2}
	assert.Len(t, ValidateSupply(&bad), 4)
}
