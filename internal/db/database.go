package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vtol-medical-drone-system/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoDataset is returned when the archive holds no generated dataset
var ErrNoDataset = errors.New("no dataset stored")

// Database wraps the SQLite connection
type Database struct {
	conn *sql.DB
}

// New opens (and if needed creates) the dataset archive at dbPath
func New(dbPath string) (*Database, error) {
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", dbPath)

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	db := &Database{conn: conn}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// initialize creates tables and indexes
func (db *Database) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		seed INTEGER NOT NULL,
		generated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS drones (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		battery INTEGER NOT NULL CHECK (battery BETWEEN 0 AND 100),
		mission TEXT NOT NULL,
		location TEXT NOT NULL,
		last_update DATETIME
	);

	CREATE TABLE IF NOT EXISTS missions (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		delivery_time INTEGER NOT NULL,
		success BOOLEAN NOT NULL
	);

	CREATE TABLE IF NOT EXISTS supplies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		min_threshold INTEGER NOT NULL,
		location TEXT NOT NULL,
		expiry_date DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inventory_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		supply_type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		location TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_log_timestamp ON inventory_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_supplies_location ON supplies(location);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

// SaveDataset replaces the stored dataset with ds in one transaction
func (db *Database) SaveDataset(ds *models.Dataset) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"datasets", "drones", "missions", "supplies", "inventory_log"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO datasets (id, seed, generated_at) VALUES (1, ?, ?)`,
		int64(ds.Seed), ds.GeneratedAt); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO drones (id, status, battery, mission, location, last_update) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range ds.Drones {
		if _, err := stmt.Exec(d.ID, d.Status, d.Battery, d.Mission, d.Location, d.LastUpdate); err != nil {
			return fmt.Errorf("failed to insert drone %s: %w", d.ID, err)
		}
	}

	mstmt, err := tx.Prepare(`INSERT INTO missions (id, type, status, delivery_time, success) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer mstmt.Close()
	for _, m := range ds.Missions {
		if _, err := mstmt.Exec(m.ID, m.Type, m.Status, m.DeliveryTime, m.Success); err != nil {
			return fmt.Errorf("failed to insert mission %s: %w", m.ID, err)
		}
	}

	if err := insertSupplies(tx, ds.Supplies); err != nil {
		return err
	}

	lstmt, err := tx.Prepare(`INSERT INTO inventory_log (timestamp, action, supply_type, quantity, location) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer lstmt.Close()
	for _, e := range ds.InventoryLog {
		if _, err := lstmt.Exec(e.Timestamp, e.Action, e.SupplyType, e.Quantity, e.Location); err != nil {
			return fmt.Errorf("failed to insert inventory entry: %w", err)
		}
	}

	return tx.Commit()
}

func insertSupplies(tx *sql.Tx, supplies []models.SupplyItem) error {
	stmt, err := tx.Prepare(`INSERT INTO supplies (type, quantity, min_threshold, location, expiry_date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range supplies {
		if _, err := stmt.Exec(s.Type, s.Quantity, s.MinThreshold, s.Location, s.ExpiryDate); err != nil {
			return fmt.Errorf("failed to insert supply %s: %w", s.Type, err)
		}
	}
	return nil
}

// ReplaceSupplies swaps the supply lines of the stored dataset and returns
// how many were written
func (db *Database) ReplaceSupplies(supplies []models.SupplyItem) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNoDataset
	}

	if _, err := tx.Exec("DELETE FROM supplies"); err != nil {
		return 0, err
	}
	if err := insertSupplies(tx, supplies); err != nil {
		return 0, err
	}
	return int64(len(supplies)), tx.Commit()
}

// LoadDataset reads the stored dataset
func (db *Database) LoadDataset() (*models.Dataset, error) {
	var ds models.Dataset
	var seed int64
	err := db.conn.QueryRow(`SELECT seed, generated_at FROM datasets WHERE id = 1`).Scan(&seed, &ds.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, err
	}
	ds.Seed = uint64(seed)

	if ds.Drones, err = db.loadDrones(); err != nil {
		return nil, err
	}
	if ds.Missions, err = db.loadMissions(); err != nil {
		return nil, err
	}
	if ds.Supplies, err = db.ListSupplies(); err != nil {
		return nil, err
	}
	if ds.InventoryLog, err = db.loadInventoryLog(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (db *Database) loadDrones() ([]models.DroneRecord, error) {
	rows, err := db.conn.Query(`SELECT id, status, battery, mission, location, last_update FROM drones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drones []models.DroneRecord
	for rows.Next() {
		var d models.DroneRecord
		var updated sql.NullTime
		if err := rows.Scan(&d.ID, &d.Status, &d.Battery, &d.Mission, &d.Location, &updated); err != nil {
			return nil, err
		}
		if updated.Valid {
			t := updated.Time
			d.LastUpdate = &t
		}
		drones = append(drones, d)
	}
	return drones, rows.Err()
}

func (db *Database) loadMissions() ([]models.MissionRecord, error) {
	rows, err := db.conn.Query(`SELECT id, type, status, delivery_time, success FROM missions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []models.MissionRecord
	for rows.Next() {
		var m models.MissionRecord
		if err := rows.Scan(&m.ID, &m.Type, &m.Status, &m.DeliveryTime, &m.Success); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// ListSupplies returns the stored supply lines with their derived status
func (db *Database) ListSupplies() ([]models.SupplyItem, error) {
	rows, err := db.conn.Query(`SELECT type, quantity, min_threshold, location, expiry_date FROM supplies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []models.SupplyItem
	for rows.Next() {
		var s models.SupplyItem
		if err := rows.Scan(&s.Type, &s.Quantity, &s.MinThreshold, &s.Location, &s.ExpiryDate); err != nil {
			return nil, err
		}
		s.Status = models.StockStatusFor(s.Quantity, s.MinThreshold)
		supplies = append(supplies, s)
	}
	return supplies, rows.Err()
}

func (db *Database) loadInventoryLog() ([]models.InventoryLogEntry, error) {
	rows, err := db.conn.Query(`
		SELECT timestamp, action, supply_type, quantity, location
		FROM inventory_log
		ORDER BY timestamp DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.InventoryLogEntry
	for rows.Next() {
		var e models.InventoryLogEntry
		if err := rows.Scan(&e.Timestamp, &e.Action, &e.SupplyType, &e.Quantity, &e.Location); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarises the archive contents
type Stats struct {
	HasDataset    bool      `json:"has_dataset"`
	Seed          uint64    `json:"seed"`
	GeneratedAt   time.Time `json:"generated_at"`
	Drones        int64     `json:"drones"`
	Missions      int64     `json:"missions"`
	Supplies      int64     `json:"supplies"`
	LowStock      int64     `json:"low_stock"`
	InventoryLogs int64     `json:"inventory_log"`
}

// GetStats returns database statistics
func (db *Database) GetStats() (*Stats, error) {
	var s Stats
	var seed int64
	err := db.conn.QueryRow(`SELECT seed, generated_at FROM datasets WHERE id = 1`).Scan(&seed, &s.GeneratedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		s.HasDataset = true
		s.Seed = uint64(seed)
	}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM drones", &s.Drones},
		{"SELECT COUNT(*) FROM missions", &s.Missions},
		{"SELECT COUNT(*) FROM supplies", &s.Supplies},
		{"SELECT COUNT(*) FROM supplies WHERE quantity < min_threshold", &s.LowStock},
		{"SELECT COUNT(*) FROM inventory_log", &s.InventoryLogs},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
