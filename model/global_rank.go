package model

const (
	MaxTrust     = 1.0
	MinTrust     = -1.0
	NeutralTrust = 0.0
)

// GlobalRank is the last aggregated network-wide opinion about one node,
// together with the gossip weights measuring how far the neighbour claims
// agreed with it.
type GlobalRank struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement:true"`
	NodeID string `gorm:"uniqueIndex;size:255;not null"`

	RequestingTrustValue   float64 `gorm:"default:0"`
	ComputingTrustValue    float64 `gorm:"default:0"`
	GossipWeightComputing  float64 `gorm:"default:0"`
	GossipWeightRequesting float64 `gorm:"default:0"`

	CreatedDate  int64 `gorm:"autoCreateTime"`
	ModifiedDate int64 `gorm:"autoUpdateTime"`
}

func (GlobalRank) TableName() string {
	return "global_rank"
}
