package models

import "time"

// StockStatus is derived from stock against its minimum threshold
type StockStatus string

const (
	StockGood StockStatus = "Good"
	StockLow  StockStatus = "Low"
)

// StockStatusFor returns StockLow iff stock is below threshold.
func StockStatusFor(stock, threshold int) StockStatus {
	if stock < threshold {
		return StockLow
	}
	return StockGood
}

// SupplyRecord is the metrics view of a medical supply line
type SupplyRecord struct {
	Item         string      `json:"item"`
	Stock        int         `json:"stock"`
	MinThreshold int         `json:"min_threshold"`
	Status       StockStatus `json:"status"`
}

// SupplyItem is the inventory view of a medical supply line
type SupplyItem struct {
	Type         string      `json:"type"`
	Quantity     int         `json:"quantity"`
	MinThreshold int         `json:"min_threshold"`
	Location     string      `json:"location"`
	ExpiryDate   time.Time   `json:"expiry_date"`
	Status       StockStatus `json:"status"`
}

// InventoryAction is a kind of inventory movement
type InventoryAction string

const (
	ActionRestocked   InventoryAction = "Restocked"
	ActionUsed        InventoryAction = "Used"
	ActionTransferred InventoryAction = "Transferred"
	ActionExpired     InventoryAction = "Expired"
)

// InventoryActions lists every inventory action
var InventoryActions = []InventoryAction{ActionRestocked, ActionUsed, ActionTransferred, ActionExpired}

// InventoryLogEntry records one inventory movement
type InventoryLogEntry struct {
	Timestamp  time.Time       `json:"timestamp"`
	Action     InventoryAction `json:"action"`
	SupplyType string          `json:"supply_type"`
	Quantity   int             `json:"quantity"`
	Location   string          `json:"location"`
}

// ExpiryAlert flags a supply close to (or past) its expiry date
type ExpiryAlert struct {
	SupplyType   string `json:"supply_type"`
	DaysToExpiry int    `json:"days_to_expiry"`
	Location     string `json:"location"`
}

// InventoryOverview summarises the supply stock
type InventoryOverview struct {
	TotalItems    int `json:"total_items"`
	LowStockItems int `json:"low_stock_items"`
}

// SupplyReport is the /api/supplies payload
type SupplyReport struct {
	Supplies     []SupplyItem      `json:"supplies"`
	Overview     InventoryOverview `json:"overview"`
	ExpiryAlerts []ExpiryAlert     `json:"expiry_alerts"`
	Distribution map[string]int    `json:"distribution"`
}
