package domain

import "time"

// ScanEvent represents one product scan reported by a client device. Scans
// are the app's raw activity feed: each accepted scan bumps the ledger's
// scan counter, tracked CO2, and points.
type ScanEvent struct {
	UserID      string
	Barcode     string
	ProductName string
	CO2SavedKg  float64
	Source      string
	Timestamp   time.Time
}
