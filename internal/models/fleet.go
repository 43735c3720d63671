package models

import "time"

// DroneStatus is the operational state of a drone
type DroneStatus string

const (
	StatusActive      DroneStatus = "Active"
	StatusCharging    DroneStatus = "Charging"
	StatusMaintenance DroneStatus = "Maintenance"
	StatusEmergency   DroneStatus = "Emergency"
	StatusStandby     DroneStatus = "Standby"
)

// DroneStatuses lists every status in display order
var DroneStatuses = []DroneStatus{
	StatusActive, StatusCharging, StatusMaintenance, StatusEmergency, StatusStandby,
}

// DroneRecord represents a single drone in the fleet
type DroneRecord struct {
	ID         string      `json:"id"`
	Status     DroneStatus `json:"status"`
	Battery    int         `json:"battery"` // percentage
	Mission    string      `json:"mission"`
	Location   string      `json:"location"`
	LastUpdate *time.Time  `json:"last_update,omitempty"`
}

// FleetSnapshot is the /api/fleet payload
type FleetSnapshot struct {
	Drones          []DroneRecord `json:"drones"`
	TotalDrones     int           `json:"total_drones"`
	ActiveMissions  int           `json:"active_missions"`
	SuccessRate     *float64      `json:"success_rate"`
	AvgDeliveryTime *float64      `json:"avg_delivery_time"` // minutes, null when unknown
}

// KPIs are the headline fleet numbers
type KPIs struct {
	TotalDrones     int      `json:"total_drones"`
	ActiveMissions  int      `json:"active_missions"`
	SuccessRate     *float64 `json:"success_rate"`
	AvgDeliveryTime *float64 `json:"avg_delivery_time"`
}

// MetricsSnapshot is the /api/metrics payload
type MetricsSnapshot struct {
	KPIs            KPIs           `json:"kpis"`
	FleetStatus     map[string]int `json:"fleet_status"`
	MedicalSupplies []SupplyRecord `json:"medical_supplies"`
}

// StatusSnapshot is the /api/status payload
type StatusSnapshot struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	System    string `json:"system"`
	Version   string `json:"version"`
}

// MissionType categorises a delivery mission
type MissionType string

const (
	MissionMedicalSupply     MissionType = "Medical Supply"
	MissionEmergencyResponse MissionType = "Emergency Response"
	MissionRoutineDelivery   MissionType = "Routine Delivery"
)

// MissionTypes lists every mission type
var MissionTypes = []MissionType{MissionMedicalSupply, MissionEmergencyResponse, MissionRoutineDelivery}

// MissionStatus is the lifecycle state of a mission
type MissionStatus string

const (
	MissionCompleted  MissionStatus = "Completed"
	MissionInProgress MissionStatus = "In Progress"
	MissionScheduled  MissionStatus = "Scheduled"
)

// MissionStatuses lists every mission status
var MissionStatuses = []MissionStatus{MissionCompleted, MissionInProgress, MissionScheduled}

// MissionRecord represents a delivery mission
type MissionRecord struct {
	ID           string        `json:"id"`
	Type         MissionType   `json:"type"`
	Status       MissionStatus `json:"status"`
	DeliveryTime int           `json:"delivery_time"` // minutes
	Success      bool          `json:"success"`
}

// FleetOverview counts active drones against the fleet size
type FleetOverview struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

// DeliveryTrend is the average delivery time for one day
type DeliveryTrend struct {
	Date            string  `json:"date"`
	AvgDeliveryTime float64 `json:"avg_delivery_time"`
}

// Analytics is the /api/analytics payload
type Analytics struct {
	Fleet               FleetOverview   `json:"fleet"`
	CompletedMissions   int             `json:"completed_missions"`
	SuccessRate         *float64        `json:"success_rate"`
	AvgDeliveryTime     *float64        `json:"avg_delivery_time"`
	MissionDistribution map[string]int  `json:"mission_distribution"`
	BatteryDistribution map[string]int  `json:"battery_distribution"`
	DeliveryTrends      []DeliveryTrend `json:"delivery_trends"`
}
