// Package generator produces the mock fleet, mission and supply data served
// by the API. Every payload is synthesised in memory; nothing here talks to
// a real drone.
package generator

import (
	"fmt"
	"time"

	"vtol-medical-drone-system/internal/models"
)

// Source produces the payloads of the core API endpoints.
type Source interface {
	Status() models.StatusSnapshot
	Fleet() models.FleetSnapshot
	Alerts() models.AlertList
	Metrics() models.MetricsSnapshot
}

// Inventory is implemented by sources that carry mission and supply detail.
type Inventory interface {
	Missions() []models.MissionRecord
	Analytics() models.Analytics
	Supplies() models.SupplyReport
	InventoryLog(limit int) []models.InventoryLogEntry
}

// Variant selects the kind of data served.
type Variant string

const (
	// VariantLiteral serves the fixed five drone sample.
	VariantLiteral Variant = "literal"
	// VariantGenerated serves a randomly generated fleet.
	VariantGenerated Variant = "generated"
)

// Mode controls when generated data is produced.
type Mode string

const (
	// ModeSnapshot generates once; every read sees the same data.
	ModeSnapshot Mode = "snapshot"
	// ModeLive regenerates on every read.
	ModeLive Mode = "live"
)

// Aggregates controls how fleet-wide counters are reported by the literal
// source.
type Aggregates string

const (
	// AggregatesDerived computes counters from the drone list.
	AggregatesDerived Aggregates = "derived"
	// AggregatesLiteral reports the fixed fleet-wide sample numbers.
	AggregatesLiteral Aggregates = "literal"
)

// Options configures a Source.
type Options struct {
	System     string
	Version    string
	Mode       Mode
	Aggregates Aggregates
	Seed       uint64
	Sizes      Sizes
	// BatteryWarning is the battery percentage below which an alert is raised.
	BatteryWarning int
	// ExpiryWindowDays is how far ahead expiring supplies are reported.
	ExpiryWindowDays int
	Now              func() time.Time
}

// DefaultOptions returns the options used by the demo server.
func DefaultOptions() Options {
	return Options{
		System:           "VTOL Medical Drone System",
		Version:          "1.0.0",
		Mode:             ModeSnapshot,
		Aggregates:       AggregatesDerived,
		Sizes:            DefaultSizes,
		BatteryWarning:   50,
		ExpiryWindowDays: 30,
		Now:              time.Now,
	}
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) status() models.StatusSnapshot {
	return models.StatusSnapshot{
		Status:    "online",
		Timestamp: o.now().Format(time.RFC3339),
		System:    o.System,
		Version:   o.Version,
	}
}

// New builds the source for variant.
func New(variant Variant, opts Options) (Source, error) {
	switch variant {
	case VariantLiteral, "":
		return NewLiteral(opts), nil
	case VariantGenerated:
		return NewGenerated(opts), nil
	default:
		return nil, fmt.Errorf("unknown data variant: %q", variant)
	}
}
