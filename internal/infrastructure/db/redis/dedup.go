package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// ScanDedup provides idempotency checks for scan events backed by Redis.
// Key format: scan:<user_id>:<barcode>:<unix_timestamp>
type ScanDedup struct {
	client *redis.Client
}

// NewScanDedup creates a ScanDedup wrapping the given Redis client.
func NewScanDedup(client *redis.Client) *ScanDedup {
	return &ScanDedup{client: client}
}

// IsDuplicate reports whether this exact scan has already been processed.
func (d *ScanDedup) IsDuplicate(ctx context.Context, userID, barcode string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(userID, barcode, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("scan dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this scan has been processed (expires after dedupTTL).
func (d *ScanDedup) Mark(ctx context.Context, userID, barcode string, ts time.Time) error {
	return d.client.Set(ctx, d.key(userID, barcode, ts), "1", dedupTTL).Err()
}

func (d *ScanDedup) key(userID, barcode string, ts time.Time) string {
	return fmt.Sprintf("scan:%s:%s:%d", userID, barcode, ts.Unix())
}
