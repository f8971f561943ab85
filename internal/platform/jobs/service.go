package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const JobYearRollover = "year_rollover"

// RolloverRunner seeds next-year balances for one employee, carrying forward
// what their leave types allow.
type RolloverRunner interface {
	Rollover(ctx context.Context, employeeID string, fromYear int) error
}

// Service is a small in-process job runner. Every run is recorded in job_runs
// so operators can see what the schedulers did and when.
type Service struct {
	DB       *pgxpool.Pool
	Rollover RolloverRunner
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, rollover RolloverRunner) *Service {
	return &Service{
		DB:       db,
		Rollover: rollover,
		queue:    make(chan job, 128),
	}
}

// Start launches the worker and, when interval is positive, the year-rollover
// sweep. Both exit when ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	go s.worker(ctx)
	if interval > 0 {
		go s.scheduleRollovers(ctx, interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scheduleRollovers finds employees who have prior-year balances but none for
// the current year and enqueues a rollover for each. Idempotent across ticks:
// once balances exist the employee drops out of the query.
func (s *Service) scheduleRollovers(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			year := time.Now().Year()
			pending, err := s.listPendingRollovers(ctx, year)
			if err != nil {
				slog.Warn("rollover sweep lookup failed", "err", err)
				continue
			}
			for _, employeeID := range pending {
				id := employeeID
				s.Enqueue(JobYearRollover, func(ctx context.Context) (any, error) {
					if err := s.Rollover.Rollover(ctx, id, year-1); err != nil {
						return nil, err
					}
					return map[string]any{"employeeId": id, "year": year}, nil
				})
			}
		}
	}
}

func (s *Service) listPendingRollovers(ctx context.Context, year int) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT e.id
    FROM employees e
    JOIN leave_balances prev ON prev.employee_id = e.id AND prev.year = $1
    WHERE NOT EXISTS (
      SELECT 1 FROM leave_balances cur
      WHERE cur.employee_id = e.id AND cur.year = $2
    )
  `, year-1, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
