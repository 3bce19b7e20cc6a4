package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/kelaskita/timetable-engine/internal/models"
)

// CacheKey derives the content-addressed key for a schedule request.
// Entity lists are sorted by identifier first, so the key does not depend
// on input ordering.
func CacheKey(teachers []models.Teacher, rooms []models.Room, classes []models.SubjectClass, cfg models.ScheduleConfig) string {
	sortedTeachers := make([]models.Teacher, len(teachers))
	copy(sortedTeachers, teachers)
	sort.Slice(sortedTeachers, func(i, j int) bool { return sortedTeachers[i].ID < sortedTeachers[j].ID })

	sortedRooms := make([]models.Room, len(rooms))
	copy(sortedRooms, rooms)
	sort.Slice(sortedRooms, func(i, j int) bool { return sortedRooms[i].ID < sortedRooms[j].ID })

	sortedClasses := make([]models.SubjectClass, len(classes))
	copy(sortedClasses, classes)
	sort.Slice(sortedClasses, func(i, j int) bool { return sortedClasses[i].ID < sortedClasses[j].ID })

	payload := struct {
		Teachers   []models.Teacher      `json:"teachers"`
		Rooms      []models.Room         `json:"rooms"`
		Classes    []models.SubjectClass `json:"classes"`
		MaxPerDay  int                   `json:"max_per_day"`
		MaxPerWeek int                   `json:"max_per_week"`
		NumShifts  int                   `json:"num_shifts"`
	}{sortedTeachers, sortedRooms, sortedClasses, cfg.MaxPerDay, cfg.MaxPerWeek, cfg.NumShifts}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	createdAt  time.Time
	lastAccess time.Time
	schedule   []models.Assignment
}

// ScheduleCache is a process-local TTL+LRU cache of computed schedules.
// All operations serialize through one mutex so a concurrent read never
// observes a partially written entry.
type ScheduleCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	capacity int
	ttl      time.Duration

	now func() time.Time
}

// NewScheduleCache constructs a cache with fixed capacity and TTL.
func NewScheduleCache(capacity int, ttl time.Duration) *ScheduleCache {
	if capacity <= 0 {
		capacity = 50
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ScheduleCache{
		entries:  make(map[string]*cacheEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached schedule for the key. Expired entries are
// evicted on sight and reported as a miss.
func (c *ScheduleCache) Get(key string) ([]models.Assignment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	entry.lastAccess = c.now()
	return entry.schedule, true
}

// Set stores the schedule, evicting the least-recently-accessed entry
// when the cache is full.
func (c *ScheduleCache) Set(key string, schedule []models.Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		createdAt:  now,
		lastAccess: now,
		schedule:   schedule,
	}
}

// Clear empties the cache.
func (c *ScheduleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Status reports size, bounds, and the currently held keys.
func (c *ScheduleCache) Status() models.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return models.CacheStatus{
		Size:       len(c.entries),
		Capacity:   c.capacity,
		TTLSeconds: int(c.ttl.Seconds()),
		Keys:       keys,
	}
}

// evictOldestLocked removes the entry with the oldest last access.
func (c *ScheduleCache) evictOldestLocked() {
	var oldestKey string
	var oldestAccess time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
