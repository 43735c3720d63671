package models

import "time"

// Severity of an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertRecord is a single operator alert
type AlertRecord struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
}

// AlertList is the /api/alerts payload
type AlertList struct {
	Alerts []AlertRecord `json:"alerts"`
}
