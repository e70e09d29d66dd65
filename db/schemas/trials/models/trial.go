package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Trial struct {
	TaskRunID      uuid.UUID      `gorm:"type:uuid;primaryKey;column:task_run_id"`
	Run            int            `gorm:"primaryKey;autoIncrement:false;column:run"`
	ArrivalRate    float64        `gorm:"column:arrival_rate"`
	ServiceRate    float64        `gorm:"column:service_rate"`
	SimulationTime float64        `gorm:"column:simulation_time"`
	ReturnTime     float64        `gorm:"column:return_time"`
	HasReturned    bool           `gorm:"column:has_returned"`
	Output         datatypes.JSON `gorm:"type:jsonb;column:output"`
}

func (Trial) TableName() string {
	return "trials"
}
