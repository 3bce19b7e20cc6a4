package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelaskita/timetable-engine/internal/models"
)

func cacheFixture() ([]models.Teacher, []models.Room, []models.SubjectClass, models.ScheduleConfig) {
	teachers := []models.Teacher{
		{ID: "T1", Major: "Mathematics", Minor: "Physics"},
		{ID: "T2", Major: "English", Minor: "Mathematics"},
	}
	rooms := []models.Room{{ID: "R1"}}
	classes := []models.SubjectClass{
		{ID: "C1", Subject: "Mathematics", TimesPerWeek: 2, Duration: 1},
	}
	cfg := models.ScheduleConfig{MaxPerDay: 6, MaxPerWeek: 30, NumShifts: 1}
	return teachers, rooms, classes, cfg
}

func TestCacheKeyIndependentOfInputOrder(t *testing.T) {
	teachers, rooms, classes, cfg := cacheFixture()

	key := CacheKey(teachers, rooms, classes, cfg)

	reversed := []models.Teacher{teachers[1], teachers[0]}
	assert.Equal(t, key, CacheKey(reversed, rooms, classes, cfg))
}

func TestCacheKeyChangesWithConfig(t *testing.T) {
	teachers, rooms, classes, cfg := cacheFixture()

	key := CacheKey(teachers, rooms, classes, cfg)

	cfg.MaxPerDay = 4
	assert.NotEqual(t, key, CacheKey(teachers, rooms, classes, cfg))
}

func TestScheduleCacheHitAndMiss(t *testing.T) {
	cache := NewScheduleCache(10, time.Minute)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	schedule := []models.Assignment{{TeacherID: "T1", ClassID: "C1", Subject: "Mathematics", RoomID: "R1", Day: "Mon", Period: "07:00-08:00", Occurrence: 1, Duration: 1}}
	cache.Set("key", schedule)

	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, schedule, got)
}

func TestScheduleCacheTTLExpiry(t *testing.T) {
	cache := NewScheduleCache(10, time.Minute)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	cache.now = func() time.Time { return current }

	cache.Set("key", []models.Assignment{})

	current = base.Add(59 * time.Second)
	_, ok := cache.Get("key")
	assert.True(t, ok)

	current = base.Add(time.Minute)
	_, ok = cache.Get("key")
	assert.False(t, ok)
	// Expired entry is evicted, not just hidden.
	assert.Equal(t, 0, cache.Status().Size)
}

func TestScheduleCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	cache := NewScheduleCache(3, time.Hour)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	cache.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), nil)
		current = current.Add(time.Second)
	}

	// Touch key-0 so key-1 becomes the eviction candidate.
	_, ok := cache.Get("key-0")
	require.True(t, ok)
	current = current.Add(time.Second)

	cache.Set("key-3", nil)

	_, ok = cache.Get("key-1")
	assert.False(t, ok)
	for _, key := range []string{"key-0", "key-2", "key-3"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "expected %s to survive eviction", key)
	}
}

func TestScheduleCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewScheduleCache(2, time.Hour)
	cache.Set("a", nil)
	cache.Set("b", nil)

	cache.Set("a", []models.Assignment{{TeacherID: "T1"}})

	status := cache.Status()
	assert.Equal(t, 2, status.Size)
	assert.Equal(t, []string{"a", "b"}, status.Keys)
}

func TestScheduleCacheStoresEmptySchedules(t *testing.T) {
	cache := NewScheduleCache(10, time.Minute)
	cache.Set("empty", []models.Assignment{})

	got, ok := cache.Get("empty")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestScheduleCacheClearAndStatus(t *testing.T) {
	cache := NewScheduleCache(5, 90*time.Second)
	cache.Set("b", nil)
	cache.Set("a", nil)

	status := cache.Status()
	assert.Equal(t, 2, status.Size)
	assert.Equal(t, 5, status.Capacity)
	assert.Equal(t, 90, status.TTLSeconds)
	assert.Equal(t, []string{"a", "b"}, status.Keys)

	cache.Clear()
	assert.Empty(t, cache.Status().Keys)
	assert.Equal(t, 0, cache.Status().Size)
}
