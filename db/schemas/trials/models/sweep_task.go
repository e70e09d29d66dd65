package models

import (
	"time"

	"github.com/google/uuid"
)

// SweepTask is one execution of one job-array task.
type SweepTask struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SweepName      string    `gorm:"size:128;index;column:sweep_name"`
	TaskID         int       `gorm:"column:task_id"`
	LambdaIndex    float64   `gorm:"column:lambda_index"`
	ArrivalRate    float64   `gorm:"column:arrival_rate"`
	ServiceRate    float64   `gorm:"column:service_rate"`
	SimulationTime float64   `gorm:"column:simulation_time"`
	Runs           int       `gorm:"column:runs"`
	StartedAt      time.Time `gorm:"column:started_at"`
	FinishedAt     time.Time `gorm:"column:finished_at"`
}

func (SweepTask) TableName() string {
	return "sweep_tasks"
}
