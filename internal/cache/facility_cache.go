package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pneumascan/internal/geo"
)

// FacilityCache keeps Overpass lookups in Redis so repeated screenings from
// the same area do not hammer the public API. Coordinates are rounded to four
// decimals (~11 m), matching the precision shown to the user.
type FacilityCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewFacilityCache(client *redisv9.Client, ttl time.Duration) *FacilityCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FacilityCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *FacilityCache) Get(ctx context.Context, lat, lon float64, amenity string) ([]geo.Facility, bool, error) {
	key := c.key(lat, lon, amenity)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get facilities failed: %w", err)
	}

	var facilities []geo.Facility
	if err := json.Unmarshal([]byte(raw), &facilities); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached facilities failed: %w", err)
	}
	return facilities, true, nil
}

func (c *FacilityCache) Set(ctx context.Context, lat, lon float64, amenity string, facilities []geo.Facility) error {
	key := c.key(lat, lon, amenity)
	payload, err := json.Marshal(facilities)
	if err != nil {
		return fmt.Errorf("marshal facility cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set facilities failed: %w", err)
	}
	return nil
}

func (c *FacilityCache) key(lat, lon float64, amenity string) string {
	return fmt.Sprintf("facility:%s:%.4f:%.4f", amenity, lat, lon)
}
