package generator

import (
	"math"
	"strings"
	"time"

	"vtol-medical-drone-system/internal/models"
)

// Battery bands used by BatteryDistribution
const (
	BandHigh   = "High (80-100%)"
	BandMedium = "Medium (50-79%)"
	BandLow    = "Low (20-49%)"
)

// SuccessRate returns the percentage of successful missions, or NaN when
// there are no missions.
func SuccessRate(missions []models.MissionRecord) float64 {
	if len(missions) == 0 {
		return math.NaN()
	}
	successful := 0
	for _, m := range missions {
		if m.Success {
			successful++
		}
	}
	return float64(successful) / float64(len(missions)) * 100
}

// AverageDeliveryTime is the mean delivery time of completed missions, or
// NaN when none have completed.
func AverageDeliveryTime(missions []models.MissionRecord) float64 {
	total, n := 0, 0
	for _, m := range missions {
		if m.Status == models.MissionCompleted {
			total += m.DeliveryTime
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return float64(total) / float64(n)
}

// CountMissions counts missions in the given status.
func CountMissions(missions []models.MissionRecord, status models.MissionStatus) int {
	n := 0
	for _, m := range missions {
		if m.Status == status {
			n++
		}
	}
	return n
}

// MissionDistribution groups missions by type.
func MissionDistribution(missions []models.MissionRecord) map[string]int {
	dist := make(map[string]int)
	for _, m := range missions {
		dist[string(m.Type)]++
	}
	return dist
}

// BatteryBand returns the distribution band for a battery level. Anything
// below 50% lands in the low band.
func BatteryBand(battery int) string {
	switch {
	case battery >= 80:
		return BandHigh
	case battery >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// BatteryDistribution counts drones per battery band. The counts always sum
// to len(drones).
func BatteryDistribution(drones []models.DroneRecord) map[string]int {
	dist := map[string]int{BandHigh: 0, BandMedium: 0, BandLow: 0}
	for _, d := range drones {
		dist[BatteryBand(d.Battery)]++
	}
	return dist
}

// StatusCounts counts drones per status keyed by lowercase status name.
// Every known status is present, even with a zero count.
func StatusCounts(drones []models.DroneRecord) map[string]int {
	counts := make(map[string]int, len(models.DroneStatuses))
	for _, s := range models.DroneStatuses {
		counts[strings.ToLower(string(s))] = 0
	}
	for _, d := range drones {
		counts[strings.ToLower(string(d.Status))]++
	}
	return counts
}

// FleetOverviewOf counts active drones.
func FleetOverviewOf(drones []models.DroneRecord) models.FleetOverview {
	active := 0
	for _, d := range drones {
		if d.Status == models.StatusActive {
			active++
		}
	}
	return models.FleetOverview{Active: active, Total: len(drones)}
}

// DaysUntil returns whole days from now until t, rounded toward negative
// infinity so an item that expired an hour ago reports -1.
func DaysUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// ExpiryAlerts lists supplies expiring within windowDays of now. Already
// expired supplies are included with a negative day count.
func ExpiryAlerts(supplies []models.SupplyItem, now time.Time, windowDays int) []models.ExpiryAlert {
	alerts := []models.ExpiryAlert{}
	for _, s := range supplies {
		days := DaysUntil(s.ExpiryDate, now)
		if days <= windowDays {
			alerts = append(alerts, models.ExpiryAlert{
				SupplyType:   s.Type,
				DaysToExpiry: days,
				Location:     s.Location,
			})
		}
	}
	return alerts
}

// SupplyDistribution sums supply quantities per storage location.
func SupplyDistribution(supplies []models.SupplyItem) map[string]int {
	dist := make(map[string]int)
	for _, s := range supplies {
		dist[s.Location] += s.Quantity
	}
	return dist
}

// InventoryOverviewOf totals stock and counts low stock lines.
func InventoryOverviewOf(supplies []models.SupplyItem) models.InventoryOverview {
	var o models.InventoryOverview
	for _, s := range supplies {
		o.TotalItems += s.Quantity
		if models.StockStatusFor(s.Quantity, s.MinThreshold) == models.StockLow {
			o.LowStockItems++
		}
	}
	return o
}

// SupplyRecords converts inventory lines into the metrics view.
func SupplyRecords(supplies []models.SupplyItem) []models.SupplyRecord {
	records := make([]models.SupplyRecord, 0, len(supplies))
	for _, s := range supplies {
		records = append(records, models.SupplyRecord{
			Item:         s.Type,
			Stock:        s.Quantity,
			MinThreshold: s.MinThreshold,
			Status:       models.StockStatusFor(s.Quantity, s.MinThreshold),
		})
	}
	return records
}

// optional turns NaN into a JSON null.
func optional(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
