package model

import "github.com/shopspring/decimal"

// TaskPayment records what a finished subtask is expected to cost, in the
// smallest currency unit. Amounts routinely exceed 2^64 so they live in a
// DECIMAL(38,0) column.
type TaskPayment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:true"`
	NodeID    string `gorm:"index;size:255;not null"`
	TaskID    string `gorm:"index;size:255;not null"`
	SubtaskID string `gorm:"uniqueIndex;size:255;not null"`

	ExpectedAmount decimal.Decimal `gorm:"type:DECIMAL(38,0)"`
	Accepted       bool            `gorm:"type:bool;default:false"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (TaskPayment) TableName() string {
	return "task_payment"
}
