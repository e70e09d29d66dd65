package results

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yourusername/mm1q-sweep/db/schemas/trials/models"
)

const trialBatchSize = 500

// Store keeps reports in a relational database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.SweepTask{}, &models.Trial{})
}

// Models converts a report into the rows stored for it.
func Models(r *Report) (models.SweepTask, []models.Trial) {
	task := models.SweepTask{
		ID:          r.ID,
		SweepName:   r.SweepName,
		TaskID:      r.Point.TaskID,
		LambdaIndex: r.Point.Fraction,
		ArrivalRate: r.Point.ArrivalRate,
		Runs:        len(r.Rows),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	trials := make([]models.Trial, 0, len(r.Rows))
	for i, row := range r.Rows {
		if i == 0 {
			task.ServiceRate = row.ServiceRate
			task.SimulationTime = row.SimulationTime
		}
		t := models.Trial{
			TaskRunID:      r.ID,
			Run:            row.Run,
			ArrivalRate:    row.ArrivalRate,
			ServiceRate:    row.ServiceRate,
			SimulationTime: row.SimulationTime,
			ReturnTime:     row.ReturnTime,
			HasReturned:    row.HasReturned,
		}
		if i < len(r.Outputs) && len(r.Outputs[i]) > 0 {
			t.Output = datatypes.JSON(r.Outputs[i])
		}
		trials = append(trials, t)
	}
	return task, trials
}

func (s *Store) Write(ctx context.Context, r *Report) error {
	task, trials := Models(r)
	return s.SaveTask(ctx, task, trials)
}

// SaveTask inserts a task and all of its trials in a single transaction.
func (s *Store) SaveTask(ctx context.Context, task models.SweepTask, trials []models.Trial) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("insert task %d: %w", task.TaskID, err)
		}
		if len(trials) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&trials, trialBatchSize).Error; err != nil {
			return fmt.Errorf("insert trials of task %d: %w", task.TaskID, err)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (s *Store) TrialsForTask(ctx context.Context, taskRunID uuid.UUID) ([]models.Trial, error) {
	var trials []models.Trial
	err := s.db.WithContext(ctx).
		Where("task_run_id = ?", taskRunID).
		Order("run").
		Find(&trials).Error
	return trials, err
}

// TasksForSweep lists the stored executions of a sweep ordered by task id.
func (s *Store) TasksForSweep(ctx context.Context, sweepName string) ([]models.SweepTask, error) {
	var tasks []models.SweepTask
	err := s.db.WithContext(ctx).
		Where("sweep_name = ?", sweepName).
		Order("task_id, started_at").
		Find(&tasks).Error
	return tasks, err
}
