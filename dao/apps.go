package dao

import (
	"github.com/rqzrqh/compute_market/model"
	"gorm.io/gorm/clause"
)

func (d *Dao) AppStateContains(appID string) (bool, error) {
	var count int64
	if err := d.db.Model(&model.AppConfiguration{}).Where("app_id = ?", appID).Count(&count).Error; err != nil {
		log.Errorf("AppStateContains failed:%v", err)
		return false, err
	}
	return count > 0, nil
}

func (d *Dao) GetAppEnabled(appID string) (bool, error) {
	var row model.AppConfiguration
	if err := d.db.Where("app_id = ?", appID).Take(&row).Error; err != nil {
		return false, mapNotFound(err)
	}
	return row.Enabled, nil
}

func (d *Dao) SetAppEnabled(appID string, enabled bool) error {
	row := model.AppConfiguration{AppID: appID, Enabled: enabled}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "modified_date"}),
	}).Create(&row).Error
	if err != nil {
		log.Errorf("SetAppEnabled failed:%v", err)
	}
	return err
}

func (d *Dao) DeleteAppState(appID string) error {
	result := d.db.Where("app_id = ?", appID).Delete(&model.AppConfiguration{})
	if result.Error != nil {
		log.Errorf("DeleteAppState failed:%v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Dao) ListAppStates() ([]model.AppConfiguration, error) {
	var rows []model.AppConfiguration
	if err := d.db.Order("app_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListAppStates failed:%v", err)
		return nil, err
	}
	return rows, nil
}
