package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"vtol-medical-drone-system/internal/models"
)

// Generated serves a randomly generated fleet. It is safe for concurrent use.
type Generated struct {
	opts Options

	mu     sync.Mutex
	rng    *rand.Rand
	seed   uint64
	data   *models.Dataset
	trends []models.DeliveryTrend
}

// NewGenerated generates the initial dataset from opts.Seed.
func NewGenerated(opts Options) *Generated {
	if opts.Sizes == (Sizes{}) {
		opts.Sizes = DefaultSizes
	}
	g := &Generated{opts: opts}
	g.rng, g.seed = NewRand(opts.Seed)
	g.refreshLocked()
	return g
}

// FromDataset serves a previously generated dataset. The data never changes,
// whatever opts.Mode says.
func FromDataset(ds *models.Dataset, opts Options) *Generated {
	opts.Mode = ModeSnapshot
	g := &Generated{opts: opts, data: ds}
	g.rng, g.seed = NewRand(ds.Seed)
	g.trends = DeliveryTrends(g.rng, ds.GeneratedAt)
	return g
}

func (g *Generated) refreshLocked() {
	now := g.opts.now()
	g.data = Generate(g.rng, g.opts.Sizes, now)
	g.data.Seed = g.seed
	g.trends = DeliveryTrends(g.rng, now)
}

// current returns the dataset for one read, regenerating it in live mode.
// Datasets are replaced, never mutated, so the result can be read without
// holding the lock.
func (g *Generated) current() (*models.Dataset, []models.DeliveryTrend) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opts.Mode == ModeLive {
		g.refreshLocked()
	}
	return g.data, g.trends
}

// Dataset returns the current dataset.
func (g *Generated) Dataset() *models.Dataset {
	ds, _ := g.current()
	return ds
}

func (g *Generated) Status() models.StatusSnapshot {
	return g.opts.status()
}

func (g *Generated) Fleet() models.FleetSnapshot {
	ds, _ := g.current()
	k := kpisOf(ds)
	return models.FleetSnapshot{
		Drones:          ds.Drones,
		TotalDrones:     k.TotalDrones,
		ActiveMissions:  k.ActiveMissions,
		SuccessRate:     k.SuccessRate,
		AvgDeliveryTime: k.AvgDeliveryTime,
	}
}

// Alerts derives alerts from the data: low stock is critical, a drone
// battery under the warning threshold is a warning, and supplies inside the
// expiry window are info (or warning once expired).
func (g *Generated) Alerts() models.AlertList {
	ds, _ := g.current()
	now := g.opts.now()
	alerts := []models.AlertRecord{}
	add := func(title, message, location string, sev models.Severity) {
		alerts = append(alerts, models.AlertRecord{
			ID:        len(alerts) + 1,
			Title:     title,
			Message:   message,
			Severity:  sev,
			Timestamp: now,
			Location:  location,
		})
	}

	for _, s := range ds.Supplies {
		if models.StockStatusFor(s.Quantity, s.MinThreshold) == models.StockLow {
			add("Critical Stock Level",
				fmt.Sprintf("%s below threshold (%d/%d)", s.Type, s.Quantity, s.MinThreshold),
				s.Location, models.SeverityCritical)
		}
	}
	for _, d := range ds.Drones {
		if d.Battery < g.opts.BatteryWarning {
			add("Low Battery Warning",
				fmt.Sprintf("Drone %s battery at %d%%", d.ID, d.Battery),
				d.ID, models.SeverityWarning)
		}
	}
	for _, e := range ExpiryAlerts(ds.Supplies, now, g.opts.ExpiryWindowDays) {
		if e.DaysToExpiry < 0 {
			add("Supply Expired",
				fmt.Sprintf("%s expired %d days ago", e.SupplyType, -e.DaysToExpiry),
				e.Location, models.SeverityWarning)
			continue
		}
		add("Supply Expiring Soon",
			fmt.Sprintf("%s expires in %d days", e.SupplyType, e.DaysToExpiry),
			e.Location, models.SeverityInfo)
	}
	return models.AlertList{Alerts: alerts}
}

func (g *Generated) Metrics() models.MetricsSnapshot {
	ds, _ := g.current()
	return models.MetricsSnapshot{
		KPIs:            kpisOf(ds),
		FleetStatus:     StatusCounts(ds.Drones),
		MedicalSupplies: SupplyRecords(ds.Supplies),
	}
}

func (g *Generated) Missions() []models.MissionRecord {
	ds, _ := g.current()
	return ds.Missions
}

func (g *Generated) Analytics() models.Analytics {
	ds, trends := g.current()
	return models.Analytics{
		Fleet:               FleetOverviewOf(ds.Drones),
		CompletedMissions:   CountMissions(ds.Missions, models.MissionCompleted),
		SuccessRate:         optional(SuccessRate(ds.Missions)),
		AvgDeliveryTime:     optional(AverageDeliveryTime(ds.Missions)),
		MissionDistribution: MissionDistribution(ds.Missions),
		BatteryDistribution: BatteryDistribution(ds.Drones),
		DeliveryTrends:      trends,
	}
}

func (g *Generated) Supplies() models.SupplyReport {
	ds, _ := g.current()
	return models.SupplyReport{
		Supplies:     ds.Supplies,
		Overview:     InventoryOverviewOf(ds.Supplies),
		ExpiryAlerts: ExpiryAlerts(ds.Supplies, g.opts.now(), g.opts.ExpiryWindowDays),
		Distribution: SupplyDistribution(ds.Supplies),
	}
}

// InventoryLog returns up to limit entries, newest first. A negative limit
// returns everything; zero returns none.
func (g *Generated) InventoryLog(limit int) []models.InventoryLogEntry {
	ds, _ := g.current()
	if limit < 0 || limit > len(ds.InventoryLog) {
		limit = len(ds.InventoryLog)
	}
	return ds.InventoryLog[:limit]
}

func kpisOf(ds *models.Dataset) models.KPIs {
	return models.KPIs{
		TotalDrones:     len(ds.Drones),
		ActiveMissions:  CountMissions(ds.Missions, models.MissionInProgress),
		SuccessRate:     optional(SuccessRate(ds.Missions)),
		AvgDeliveryTime: optional(AverageDeliveryTime(ds.Missions)),
	}
}
