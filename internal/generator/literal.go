package generator

import "vtol-medical-drone-system/internal/models"

// Fleet-wide figures of the literal sample. The drone list below is only a
// sample of this fleet, so these numbers are independent of it.
const (
	literalTotalDrones     = 15
	literalActiveMissions  = 8
	literalSuccessRate     = 94.5
	literalAvgDeliveryTime = 12.3
)

var literalDrones = []models.DroneRecord{
	{ID: "LLA-001", Status: models.StatusActive, Battery: 87, Mission: "Medical Delivery", Location: "Zone Alpha"},
	{ID: "LLA-002", Status: models.StatusCharging, Battery: 45, Mission: "Standby", Location: "Base Station"},
	{ID: "LLA-003", Status: models.StatusActive, Battery: 92, Mission: "Emergency Response", Location: "Zone Beta"},
	{ID: "LLA-004", Status: models.StatusMaintenance, Battery: 0, Mission: "None", Location: "Hangar"},
	{ID: "LLA-005", Status: models.StatusActive, Battery: 78, Mission: "Supply Drop", Location: "Zone Gamma"},
}

var literalSupplies = []struct {
	item             string
	stock, threshold int
}{
	{"Blood Pack O+", 25, 10},
	{"Emergency Medications", 8, 15},
	{"IV Fluids", 45, 20},
	{"Trauma Kits", 12, 8},
}

// Literal serves the fixed demo sample.
type Literal struct {
	opts Options
}

// NewLiteral creates the literal source.
func NewLiteral(opts Options) *Literal {
	return &Literal{opts: opts}
}

func (l *Literal) Status() models.StatusSnapshot {
	return l.opts.status()
}

func (l *Literal) Fleet() models.FleetSnapshot {
	drones := make([]models.DroneRecord, len(literalDrones))
	copy(drones, literalDrones)
	k := l.kpis()
	return models.FleetSnapshot{
		Drones:          drones,
		TotalDrones:     k.TotalDrones,
		ActiveMissions:  k.ActiveMissions,
		SuccessRate:     k.SuccessRate,
		AvgDeliveryTime: k.AvgDeliveryTime,
	}
}

func (l *Literal) Alerts() models.AlertList {
	now := l.opts.now()
	return models.AlertList{Alerts: []models.AlertRecord{
		{
			ID:        1,
			Title:     "Low Battery Warning",
			Message:   "Drone LLA-002 battery at 45%",
			Severity:  models.SeverityWarning,
			Timestamp: now,
			Location:  "LLA-002",
		},
		{
			ID:        2,
			Title:     "Critical Stock Level",
			Message:   "Emergency Medications below threshold",
			Severity:  models.SeverityCritical,
			Timestamp: now,
			Location:  "Medical Inventory",
		},
	}}
}

func (l *Literal) Metrics() models.MetricsSnapshot {
	supplies := make([]models.SupplyRecord, 0, len(literalSupplies))
	for _, s := range literalSupplies {
		supplies = append(supplies, models.SupplyRecord{
			Item:         s.item,
			Stock:        s.stock,
			MinThreshold: s.threshold,
			Status:       models.StockStatusFor(s.stock, s.threshold),
		})
	}

	var status map[string]int
	if l.opts.Aggregates == AggregatesLiteral {
		status = map[string]int{"active": 3, "charging": 1, "maintenance": 1, "standby": 10}
	} else {
		status = StatusCounts(literalDrones)
	}

	return models.MetricsSnapshot{
		KPIs:            l.kpis(),
		FleetStatus:     status,
		MedicalSupplies: supplies,
	}
}

func (l *Literal) kpis() models.KPIs {
	k := models.KPIs{
		SuccessRate:     optional(literalSuccessRate),
		AvgDeliveryTime: optional(literalAvgDeliveryTime),
	}
	if l.opts.Aggregates == AggregatesLiteral {
		k.TotalDrones = literalTotalDrones
		k.ActiveMissions = literalActiveMissions
		return k
	}
	overview := FleetOverviewOf(literalDrones)
	k.TotalDrones = overview.Total
	k.ActiveMissions = overview.Active
	return k
}
