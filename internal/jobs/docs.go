// Package jobs runs the marketplace's scheduled background work on github.com/robfig/cron/v3.
//
// SettlementJob fires every second ("* * * * * *") and applies payment settlement tasks
// whose due time has passed. Each task is settled in its own transaction with the task row
// locked, so several instances can run the job side by side.
//
// Usage:
//
//	job := jobs.NewSettlementJob(settleHandler, batchSize, prometheus.DefaultRegisterer, logger)
//	manager := jobs.NewJobManager(job)
//	if err := manager.StartAll(); err != nil {
//		log.Fatalf("failed to start jobs: %v", err)
//	}
//	defer manager.StopAll()
package jobs
