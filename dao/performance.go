package dao

import (
	"github.com/rqzrqh/compute_market/model"
	"golang.org/x/xerrors"
	"gorm.io/gorm/clause"
)

// UpdateOrCreatePerformance stores the latest benchmark result for an
// environment. The row is created on first measurement, later measurements
// replace value and cpu_usage in place.
func (d *Dao) UpdateOrCreatePerformance(envID string, value float64, cpuUsage int64) error {
	if envID == "" {
		return xerrors.New("empty environment id")
	}

	row := model.Performance{
		EnvironmentID:   envID,
		Value:           value,
		CpuUsage:        cpuUsage,
		MinAcceptedStep: model.DefaultMinAcceptedStep,
	}

	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "environment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"cpu_usage",
			"modified_date",
		}),
	}).Create(&row).Error
	if err != nil {
		log.Errorf("UpdateOrCreatePerformance failed:%v", err)
	}
	return err
}

func (d *Dao) GetPerformance(envID string) (*model.Performance, error) {
	var row model.Performance
	if err := d.db.Where("environment_id = ?", envID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

func (d *Dao) ListPerformances() ([]model.Performance, error) {
	var rows []model.Performance
	if err := d.db.Order("environment_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListPerformances failed:%v", err)
		return nil, err
	}
	return rows, nil
}

func (d *Dao) UpsertComputingNode(nodeID string, name string) error {
	if nodeID == "" {
		return xerrors.New("empty node id")
	}

	row := model.ComputingNode{NodeID: nodeID, Name: name}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "modified_date"}),
	}).Create(&row).Error
	if err != nil {
		log.Errorf("UpsertComputingNode failed:%v", err)
	}
	return err
}

// EnsureComputingNode creates the node row if missing without touching an
// existing name.
func (d *Dao) EnsureComputingNode(nodeID string) error {
	if nodeID == "" {
		return xerrors.New("empty node id")
	}

	row := model.ComputingNode{NodeID: nodeID}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		log.Errorf("EnsureComputingNode failed:%v", err)
	}
	return err
}

func (d *Dao) GetComputingNode(nodeID string) (*model.ComputingNode, error) {
	var row model.ComputingNode
	if err := d.db.Where("node_id = ?", nodeID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

// EnsureUsageFactor returns the stored factor for a provider, creating the
// row with the default on first sight.
func (d *Dao) EnsureUsageFactor(providerID string) (float64, error) {
	row := model.UsageFactor{ProviderNodeID: providerID, UsageFactor: model.DefaultUsageFactor}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_node_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		log.Errorf("EnsureUsageFactor failed:%v", err)
		return 0, err
	}

	var got model.UsageFactor
	if err := d.db.Where("provider_node_id = ?", providerID).Take(&got).Error; err != nil {
		log.Errorf("EnsureUsageFactor failed:%v", err)
		return 0, err
	}
	return got.UsageFactor, nil
}

func (d *Dao) SetUsageFactor(providerID string, factor float64) error {
	row := model.UsageFactor{ProviderNodeID: providerID, UsageFactor: factor}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"usage_factor", "modified_date"}),
	}).Create(&row).Error
	if err != nil {
		log.Errorf("SetUsageFactor failed:%v", err)
	}
	return err
}
