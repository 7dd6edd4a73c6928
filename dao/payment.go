package dao

import (
	"github.com/rqzrqh/compute_market/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// AddTaskPayment records the expected payment for one finished subtask.
// A subtask is recorded once, repeated inserts return ErrAlreadyExists.
func (d *Dao) AddTaskPayment(p *model.TaskPayment) error {
	result := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subtask_id"}},
		DoNothing: true,
	}).Create(p)
	if result.Error != nil {
		log.Errorf("AddTaskPayment failed:%v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (d *Dao) GetTaskPayment(subtaskID string) (*model.TaskPayment, error) {
	var row model.TaskPayment
	if err := d.db.Where("subtask_id = ?", subtaskID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

func (d *Dao) ListTaskPayments(taskID string) ([]model.TaskPayment, error) {
	var rows []model.TaskPayment
	if err := d.db.Where("task_id = ?", taskID).Order("id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListTaskPayments failed:%v", err)
		return nil, err
	}
	return rows, nil
}

// ListTaskPaymentsSince returns payments with id >= watermark, feeding the
// digest cache loop.
func (d *Dao) ListTaskPaymentsSince(watermark uint64) ([]model.TaskPayment, error) {
	var rows []model.TaskPayment
	if err := d.db.Where("id >= ?", watermark).Order("id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListTaskPaymentsSince failed:%v", err)
		return nil, err
	}
	return rows, nil
}

// TotalExpectedPayment sums expected amounts of one task in Go so values
// above 2^64 survive intact.
func (d *Dao) TotalExpectedPayment(taskID string) (decimal.Decimal, error) {
	rows, err := d.ListTaskPayments(taskID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.ExpectedAmount)
	}
	return total, nil
}
