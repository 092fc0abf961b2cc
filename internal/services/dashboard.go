package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"tasknest/backend/internal/cache"
	"tasknest/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalTasks        int64             `json:"total_tasks"`
	CompletedTasks    int64             `json:"completed_tasks"`
	PendingTasks      int64             `json:"pending_tasks"`
	CompletionRate    float64           `json:"completion_rate"`
	UpcomingTasks     []models.Task     `json:"upcoming_tasks"`
	OverdueTasks      []models.Task     `json:"overdue_tasks"`
	UpcomingReminders []models.Reminder `json:"upcoming_reminders"`
}

type DashboardService interface {
	Stats(db *gorm.DB, userID uuid.UUID) (*DashboardStats, error)
	Invalidate(userID uuid.UUID)
}

type DashboardServiceImpl struct{}

func NewDashboardService() *DashboardServiceImpl {
	return &DashboardServiceImpl{}
}

func (s *DashboardServiceImpl) Stats(db *gorm.DB, userID uuid.UUID) (*DashboardStats, error) {
	now := time.Now().UTC()
	stats := &DashboardStats{}

	if err := db.Model(&models.Task{}).Where("user_id = ?", userID).Count(&stats.TotalTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("user_id = ? AND status = ?", userID, models.StatusCompleted).Count(&stats.CompletedTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("user_id = ? AND status = ?", userID, models.StatusPending).Count(&stats.PendingTasks).Error; err != nil {
		return nil, err
	}

	if stats.TotalTasks > 0 {
		rate := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}

	err := db.Where("user_id = ? AND deadline >= ?", userID, now).
		Order("deadline asc").
		Limit(5).
		Find(&stats.UpcomingTasks).Error
	if err != nil {
		return nil, err
	}

	err = db.Where("user_id = ? AND deadline < ? AND status <> ?", userID, now, models.StatusCompleted).
		Order("deadline asc").
		Find(&stats.OverdueTasks).Error
	if err != nil {
		return nil, err
	}

	err = db.Where("user_id = ? AND is_sent = ? AND reminder_time >= ?", userID, false, now).
		Order("reminder_time asc").
		Limit(5).
		Find(&stats.UpcomingReminders).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *DashboardServiceImpl) Invalidate(userID uuid.UUID) {}

// CachedDashboardService fronts the stats query with a short-lived redis
// entry; task and reminder mutations invalidate it.
type CachedDashboardService struct {
	inner DashboardService
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewCachedDashboardService(inner DashboardService, cacheInstance *cache.RedisCache, ttl time.Duration) *CachedDashboardService {
	return &CachedDashboardService{inner: inner, cache: cacheInstance, ttl: ttl}
}

func (s *CachedDashboardService) cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s", userID.String())
}

func (s *CachedDashboardService) Stats(db *gorm.DB, userID uuid.UUID) (*DashboardStats, error) {
	var cached DashboardStats
	if err := s.cache.Get(s.cacheKey(userID), &cached); err == nil {
		return &cached, nil
	}

	stats, err := s.inner.Stats(db, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(s.cacheKey(userID), stats, s.ttl); err != nil {
		log.Printf("dashboard cache set failed: %v", err)
	}

	return stats, nil
}

func (s *CachedDashboardService) Invalidate(userID uuid.UUID) {
	if err := s.cache.Delete(s.cacheKey(userID)); err != nil {
		log.Printf("dashboard cache invalidate failed: %v", err)
	}
}
