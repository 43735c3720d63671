package generator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"vtol-medical-drone-system/internal/models"
)

// SupplyTypes are the medical supply lines carried by the fleet
var SupplyTypes = []string{
	"Blood Bags", "IV Fluids", "Bandages", "Antibiotics",
	"Pain Medication", "Surgical Tools", "Oxygen Tanks",
	"Defibrillators", "Stretchers", "First Aid Kits",
}

// Sizes controls how many records a generation run produces
type Sizes struct {
	Drones       int
	Missions     int
	InventoryLog int
}

// Validate rejects negative record counts.
func (s Sizes) Validate() error {
	if s.Drones < 0 || s.Missions < 0 || s.InventoryLog < 0 {
		return fmt.Errorf("record counts cannot be negative (drones=%d missions=%d inventory_log=%d)",
			s.Drones, s.Missions, s.InventoryLog)
	}
	return nil
}

// DefaultSizes matches the demo dashboard.
var DefaultSizes = Sizes{Drones: 20, Missions: 50, InventoryLog: 30}

// NewRand returns a random source for seed. Seed 0 picks a time based seed.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// Generate builds a complete dataset. The result depends only on r, sizes
// and now.
func Generate(r *rand.Rand, sizes Sizes, now time.Time) *models.Dataset {
	ds := &models.Dataset{GeneratedAt: now}
	ds.Drones = generateDrones(r, sizes.Drones, now)
	ds.Missions = generateMissions(r, sizes.Missions)
	ds.Supplies = generateSupplies(r, now)
	ds.InventoryLog = generateInventoryLog(r, sizes.InventoryLog, ds.Supplies, now)
	return ds
}

func generateDrones(r *rand.Rand, n int, now time.Time) []models.DroneRecord {
	drones := make([]models.DroneRecord, 0, n)
	for i := 1; i <= n; i++ {
		mission := "Standby"
		if r.IntN(2) == 0 {
			mission = fmt.Sprintf("Mission-%d", between(r, 100, 999))
		}
		updated := now.Add(-time.Duration(between(r, 1, 30)) * time.Minute)
		drones = append(drones, models.DroneRecord{
			ID:         fmt.Sprintf("DRONE-%03d", i),
			Status:     pick(r, models.DroneStatuses),
			Battery:    between(r, 20, 100),
			Mission:    mission,
			Location:   fmt.Sprintf("Location-%d", between(r, 1, 10)),
			LastUpdate: &updated,
		})
	}
	return drones
}

func generateMissions(r *rand.Rand, n int) []models.MissionRecord {
	missions := make([]models.MissionRecord, 0, n)
	for i := 1; i <= n; i++ {
		missions = append(missions, models.MissionRecord{
			ID:           fmt.Sprintf("MISSION-%03d", i),
			Type:         pick(r, models.MissionTypes),
			Status:       pick(r, models.MissionStatuses),
			DeliveryTime: between(r, 15, 45),
			Success:      r.IntN(4) != 0, // 75% success
		})
	}
	return missions
}

func generateSupplies(r *rand.Rand, now time.Time) []models.SupplyItem {
	supplies := make([]models.SupplyItem, 0, len(SupplyTypes))
	for _, t := range SupplyTypes {
		qty := between(r, 5, 200)
		threshold := between(r, 20, 50)
		supplies = append(supplies, models.SupplyItem{
			Type:         t,
			Quantity:     qty,
			MinThreshold: threshold,
			Location:     fmt.Sprintf("Storage-%d", between(r, 1, 5)),
			ExpiryDate:   now.AddDate(0, 0, between(r, -10, 365)),
			Status:       models.StockStatusFor(qty, threshold),
		})
	}
	return supplies
}

func generateInventoryLog(r *rand.Rand, n int, supplies []models.SupplyItem, now time.Time) []models.InventoryLogEntry {
	entries := make([]models.InventoryLogEntry, 0, n)
	if len(supplies) == 0 {
		return entries
	}
	for i := 0; i < n; i++ {
		entries = append(entries, models.InventoryLogEntry{
			Timestamp:  now.Add(-time.Duration(between(r, 1, 72)) * time.Hour),
			Action:     pick(r, models.InventoryActions),
			SupplyType: pick(r, supplies).Type,
			Quantity:   between(r, 1, 20),
			Location:   fmt.Sprintf("Location-%d", between(r, 1, 10)),
		})
	}
	SortInventoryLog(entries)
	return entries
}

// SortInventoryLog orders entries newest first.
func SortInventoryLog(entries []models.InventoryLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// DeliveryTrends produces a daily average delivery time for the seven days
// before now, oldest first.
func DeliveryTrends(r *rand.Rand, now time.Time) []models.DeliveryTrend {
	trends := make([]models.DeliveryTrend, 0, 7)
	for i := 7; i >= 1; i-- {
		trends = append(trends, models.DeliveryTrend{
			Date:            now.AddDate(0, 0, -i).Format("2006-01-02"),
			AvgDeliveryTime: 20 + r.Float64()*15,
		})
	}
	return trends
}
