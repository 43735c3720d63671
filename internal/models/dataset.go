package models

import "time"

// Dataset is the output of one generation run
type Dataset struct {
	Seed         uint64              `json:"seed"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Drones       []DroneRecord       `json:"drones"`
	Missions     []MissionRecord     `json:"missions"`
	Supplies     []SupplyItem        `json:"supplies"`
	InventoryLog []InventoryLogEntry `json:"inventory_log"`
}
