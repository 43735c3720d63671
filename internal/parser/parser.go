package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"vtol-medical-drone-system/internal/models"
)

// Parser reads medical supply manifests
type Parser struct {
	format string
	logger *slog.Logger
}

// NewParser creates a new parser for format ("csv" or "json")
func NewParser(format string, logger *slog.Logger) *Parser {
	return &Parser{format: format, logger: logger}
}

// ParseFile parses a supply manifest file
func (p *Parser) ParseFile(filename string) ([]models.SupplyItem, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return p.Parse(file)
}

// Parse parses a supply manifest from r. Malformed rows are logged and
// skipped.
func (p *Parser) Parse(r io.Reader) ([]models.SupplyItem, error) {
	var (
		items []models.SupplyItem
		err   error
	)
	switch strings.ToLower(p.format) {
	case "csv":
		items, err = p.parseCSV(r)
	case "json":
		items, err = p.parseJSON(r)
	default:
		return nil, fmt.Errorf("unsupported format: %s", p.format)
	}
	for i := range items {
		items[i].Status = models.StockStatusFor(items[i].Quantity, items[i].MinThreshold)
	}
	return items, err
}

// parseCSV parses a manifest with a header row
func (p *Parser) parseCSV(r io.Reader) ([]models.SupplyItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	indices := make(map[string]int)
	for i, h := range header {
		indices[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := indices["type"]; !ok {
		return nil, fmt.Errorf("header is missing the type column")
	}

	var results []models.SupplyItem
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return results, fmt.Errorf("error at line %d: %w", lineNum, err)
		}

		item, err := recordToSupply(record, indices)
		if err != nil {
			p.logger.Warn("skipping manifest row", "line", lineNum, "error", err)
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

// recordToSupply converts a CSV record to a SupplyItem
func recordToSupply(record []string, indices map[string]int) (models.SupplyItem, error) {
	var s models.SupplyItem
	var err error

	getValue := func(key string) string {
		if idx, ok := indices[key]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	s.Type = getValue("type")
	if s.Type == "" {
		return s, fmt.Errorf("missing type")
	}
	if s.Quantity, err = strconv.Atoi(getValue("quantity")); err != nil {
		return s, fmt.Errorf("invalid quantity: %w", err)
	}
	if s.MinThreshold, err = strconv.Atoi(getValue("min_threshold")); err != nil {
		return s, fmt.Errorf("invalid min_threshold: %w", err)
	}
	s.Location = getValue("location")

	if v := getValue("expiry_date"); v != "" {
		if s.ExpiryDate, err = parseTimestamp(v); err != nil {
			return s, fmt.Errorf("invalid expiry_date: %w", err)
		}
	}
	return s, nil
}

// supplyLine is the wire form of a manifest entry. The expiry date stays a
// string so it goes through the same layouts as CSV.
type supplyLine struct {
	Type         string `json:"type"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
	Location     string `json:"location"`
	ExpiryDate   string `json:"expiry_date"`
}

func (l supplyLine) toSupply() (models.SupplyItem, error) {
	s := models.SupplyItem{
		Type:         strings.TrimSpace(l.Type),
		Quantity:     l.Quantity,
		MinThreshold: l.MinThreshold,
		Location:     strings.TrimSpace(l.Location),
	}
	if s.Type == "" {
		return s, fmt.Errorf("missing type")
	}
	if v := strings.TrimSpace(l.ExpiryDate); v != "" {
		var err error
		if s.ExpiryDate, err = parseTimestamp(v); err != nil {
			return s, fmt.Errorf("invalid expiry_date: %w", err)
		}
	}
	return s, nil
}

// parseJSON accepts either a JSON array or newline-delimited objects
func (p *Parser) parseJSON(r io.Reader) ([]models.SupplyItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return p.parseJSONLines(bytes.NewReader(data))
	}

	var lines []supplyLine
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	var results []models.SupplyItem
	for i, l := range lines {
		item, err := l.toSupply()
		if err != nil {
			p.logger.Warn("skipping manifest entry", "index", i, "error", err)
			continue
		}
		results = append(results, item)
	}
	return results, nil
}

// parseJSONLines parses newline-delimited JSON
func (p *Parser) parseJSONLines(r io.Reader) ([]models.SupplyItem, error) {
	var results []models.SupplyItem
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var l supplyLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			p.logger.Warn("skipping manifest line", "line", lineNum, "error", err)
			continue
		}
		item, err := l.toSupply()
		if err != nil {
			p.logger.Warn("skipping manifest line", "line", lineNum, "error", err)
			continue
		}
		results = append(results, item)
	}
	return results, scanner.Err()
}

// parseTimestamp tries multiple timestamp formats
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

// ValidateSupply returns the problems found in a supply line
func ValidateSupply(s *models.SupplyItem) []string {
	var errs []string
	if s.Type == "" {
		errs = append(errs, "type is required")
	}
	if s.Quantity < 0 {
		errs = append(errs, "quantity cannot be negative")
	}
	if s.MinThreshold < 0 {
		errs = append(errs, "min_threshold cannot be negative")
	}
	if s.ExpiryDate.IsZero() {
		errs = append(errs, "expiry_date is required")
	}
	return errs
}
