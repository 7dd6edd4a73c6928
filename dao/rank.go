package dao

import (
	"github.com/rqzrqh/compute_market/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalRankDelta carries counter increments that must land in one statement.
type LocalRankDelta struct {
	PositiveComputed  int64
	NegativeComputed  int64
	WrongComputed     int64
	PositiveRequested int64
	NegativeRequested int64
	PositivePayment   int64
	NegativePayment   int64
	PositiveResource  int64
	NegativeResource  int64
}

func (delta LocalRankDelta) assignments() map[string]interface{} {
	cols := make(map[string]interface{})

	add := func(name string, v int64) {
		if v != 0 {
			cols[name] = gorm.Expr(name+" + ?", v)
		}
	}

	add("positive_computed", delta.PositiveComputed)
	add("negative_computed", delta.NegativeComputed)
	add("wrong_computed", delta.WrongComputed)
	add("positive_requested", delta.PositiveRequested)
	add("negative_requested", delta.NegativeRequested)
	add("positive_payment", delta.PositivePayment)
	add("negative_payment", delta.NegativePayment)
	add("positive_resource", delta.PositiveResource)
	add("negative_resource", delta.NegativeResource)

	return cols
}

func (d *Dao) EnsureLocalRank(nodeID string) error {
	row := model.LocalRank{NodeID: nodeID}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		log.Errorf("EnsureLocalRank failed:%v", err)
	}
	return err
}

// IncreaseLocalRank bumps counters with a single UPDATE so concurrent
// writers never lose increments.
func (d *Dao) IncreaseLocalRank(nodeID string, delta LocalRankDelta) error {
	if err := d.EnsureLocalRank(nodeID); err != nil {
		return err
	}

	cols := delta.assignments()
	if len(cols) == 0 {
		return nil
	}

	err := d.db.Model(&model.LocalRank{}).Where("node_id = ?", nodeID).Updates(cols).Error
	if err != nil {
		log.Errorf("IncreaseLocalRank failed:%v", err)
	}
	return err
}

func (d *Dao) GetLocalRank(nodeID string) (*model.LocalRank, error) {
	var row model.LocalRank
	if err := d.db.Where("node_id = ?", nodeID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

func (d *Dao) ListLocalRanks() ([]model.LocalRank, error) {
	var rows []model.LocalRank
	if err := d.db.Order("node_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListLocalRanks failed:%v", err)
		return nil, err
	}
	return rows, nil
}

// ListLocalRanksModifiedSince feeds the digest cache loop. The watermark is
// inclusive, re-writing an already cached digest is harmless.
func (d *Dao) ListLocalRanksModifiedSince(watermark int64) ([]model.LocalRank, error) {
	var rows []model.LocalRank
	if err := d.db.Where("modified_date >= ?", watermark).Order("node_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListLocalRanksModifiedSince failed:%v", err)
		return nil, err
	}
	return rows, nil
}

func (d *Dao) SetGlobalRank(row *model.GlobalRank) error {
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requesting_trust_value",
			"computing_trust_value",
			"gossip_weight_computing",
			"gossip_weight_requesting",
			"modified_date",
		}),
	}).Create(row).Error
	if err != nil {
		log.Errorf("SetGlobalRank failed:%v", err)
	}
	return err
}

func (d *Dao) GetGlobalRank(nodeID string) (*model.GlobalRank, error) {
	var row model.GlobalRank
	if err := d.db.Where("node_id = ?", nodeID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

// SetNeighbourRank records a neighbour's claim, overwriting any previous
// claim by the same neighbour about the same node.
func (d *Dao) SetNeighbourRank(row *model.NeighbourLocRank) error {
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "node_id"}, {Name: "about_node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requesting_trust_value",
			"computing_trust_value",
			"modified_date",
		}),
	}).Create(row).Error
	if err != nil {
		log.Errorf("SetNeighbourRank failed:%v", err)
	}
	return err
}

func (d *Dao) GetNeighbourRank(nodeID string, aboutNodeID string) (*model.NeighbourLocRank, error) {
	var row model.NeighbourLocRank
	if err := d.db.Where("node_id = ? AND about_node_id = ?", nodeID, aboutNodeID).Take(&row).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &row, nil
}

// ListNeighbourRanksAbout returns all known claims about one node, ordered
// by claiming neighbour so aggregation folds them deterministically.
func (d *Dao) ListNeighbourRanksAbout(aboutNodeID string) ([]model.NeighbourLocRank, error) {
	var rows []model.NeighbourLocRank
	if err := d.db.Where("about_node_id = ?", aboutNodeID).Order("node_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListNeighbourRanksAbout failed:%v", err)
		return nil, err
	}
	return rows, nil
}

// ListNeighbourRanksModifiedSince feeds the digest cache loop, so trust of
// nodes we only ever heard about through gossip is re-aggregated too.
func (d *Dao) ListNeighbourRanksModifiedSince(watermark int64) ([]model.NeighbourLocRank, error) {
	var rows []model.NeighbourLocRank
	if err := d.db.Where("modified_date >= ?", watermark).Order("about_node_id asc").Find(&rows).Error; err != nil {
		log.Errorf("ListNeighbourRanksModifiedSince failed:%v", err)
		return nil, err
	}
	return rows, nil
}
