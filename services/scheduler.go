// services/scheduler.go
package services

import (
	"log"
	"time"

	"gamification-engine/models"

	"github.com/go-co-op/gocron/v2"
)

// StartEvaluationScheduler periodically evaluates every game currently inside
// its playing window, so progression keeps moving without manual triggers.
func (s *EvaluationService) StartEvaluationScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			today := models.DateOf(time.Now())
			var games []models.Game
			err := s.DB.Where("start_date <= ? AND end_date >= ?", today, today).
				Find(&games).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, g := range games {
				report, err := s.EvaluateGame(g.SubjectAcronym, g.Course, string(g.Period))
				if err != nil {
					log.Printf("[Scheduler] Failed to evaluate game %s: %v", g.Key(), err)
					continue
				}
				if len(report.Failures) > 0 {
					log.Printf("[Scheduler] Game %s evaluated with %d rule failure(s)", g.Key(), len(report.Failures))
				}
			}
		}),
	)
}
