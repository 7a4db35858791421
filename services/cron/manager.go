package cron

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/services"
	"github.com/wahegurunursing/classes-api/utils/auth"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	blacklist *auth.TokenBlacklist
	lockouts  *auth.LockoutManager
	courses   *services.CourseService
	contacts  *services.ContactService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, courses *services.CourseService, contacts *services.ContactService) *CronManager {
	// Seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		db:        db,
		blacklist: auth.NewTokenBlacklist(db),
		lockouts:  auth.NewLockoutManager(db),
		courses:   courses,
		contacts:  contacts,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Info("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Info("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 15 minutes: close enrollment on courses past their deadline
	_, err := m.cron.AddFunc("0 */15 * * * *", func() {
		m.runJob("close_expired_enrollments", m.CloseExpiredEnrollments)
	})
	if err != nil {
		return err
	}

	// Every hour: purge expired token blacklist rows
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.runJob("purge_token_blacklist", m.PurgeTokenBlacklist)
	})
	if err != nil {
		return err
	}

	// Every hour: release accounts whose lockout window has passed
	_, err = m.cron.AddFunc("0 30 * * * *", func() {
		m.runJob("clear_expired_locks", m.ClearExpiredLocks)
	})
	if err != nil {
		return err
	}

	// Daily at 2 AM: rating sweep and contact message retention
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.runJob("rating_sweep", m.RatingSweep)
		m.runJob("cleanup_contact_messages", m.CleanupContactMessages)
	})
	if err != nil {
		return err
	}

	log.Info("All cron jobs registered successfully")
	return nil
}

// runJob executes a job with start/completion logging to the database.
func (m *CronManager) runJob(jobName string, fn func() (string, error)) {
	started := time.Now()
	log.Infow("cron job started", "job", jobName)

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: started,
	}
	m.db.Create(&cronLog)

	message, err := fn()
	completed := time.Now()
	duration := int(completed.Sub(started).Milliseconds())

	if err != nil {
		log.Errorw("cron job failed", "job", jobName, "error", err)
		m.db.Model(&cronLog).Updates(map[string]interface{}{
			"status":       "failed",
			"completed_at": completed,
			"duration":     duration,
			"error_msg":    err.Error(),
		})
		return
	}

	log.Infow("cron job completed", "job", jobName, "message", message)
	m.db.Model(&cronLog).Updates(map[string]interface{}{
		"status":       "completed",
		"completed_at": completed,
		"duration":     duration,
		"message":      message,
	})
}
