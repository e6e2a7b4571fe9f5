package jobs

import (
	"context"
	"log"
	"time"

	"github.com/chlachla/chlachla-backend/internal/services"
)

// SweeperJob periodically removes expired OTP challenges. The sweep is
// idempotent and self-healing; it runs independently of request
// handling and has no caller-visible failure mode.
type SweeperJob struct {
	otpService *services.OTPService
	interval   time.Duration
	stopChan   chan struct{}
}

// NewSweeperJob creates a sweeper over the given OTP service.
func NewSweeperJob(otpService *services.OTPService, interval time.Duration) *SweeperJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperJob{
		otpService: otpService,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (j *SweeperJob) Start() {
	go j.run()
	log.Printf("✅ OTP sweeper started (every %s)", j.interval)
}

// Stop terminates the sweep loop.
func (j *SweeperJob) Stop() {
	close(j.stopChan)
}

func (j *SweeperJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.otpService.SweepExpired(context.Background())
		}
	}
}
