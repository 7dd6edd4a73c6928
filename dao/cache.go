package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rqzrqh/compute_market/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CacheTimeout time.Duration = 3600 * time.Second
)

// TrustDigest is the read-side projection of one node's standing: the last
// aggregated opinion plus the raw first-hand counters behind it.
type TrustDigest struct {
	NodeID            string  `json:"node_id"`
	ComputingTrust    float64 `json:"computing_trust"`
	RequestingTrust   float64 `json:"requesting_trust"`
	PositiveComputed  int64   `json:"positive_computed"`
	NegativeComputed  int64   `json:"negative_computed"`
	WrongComputed     int64   `json:"wrong_computed"`
	PositiveRequested int64   `json:"positive_requested"`
	NegativeRequested int64   `json:"negative_requested"`
	PositivePayment   int64   `json:"positive_payment"`
	NegativePayment   int64   `json:"negative_payment"`
	ModifiedDate      int64   `json:"modified_date"`
}

type PaymentDigest struct {
	NodeID         string          `json:"node_id"`
	TaskID         string          `json:"task_id"`
	SubtaskID      string          `json:"subtask_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	CreatedDate    int64           `json:"created_date"`
}

var trustDigestKey = "trust_digest"
var paymentDigestKey = "payment_digest"
var taskPaymentList = "task_payment_list"
var nodePaymentList = "node_payment_list"

var rankNotify = "rank_notify"
var paymentNotify = "payment_notify"

func BuildTrustDigestKey(nodeID string) string {
	return trustDigestKey + "_" + nodeID
}

func BuildPaymentDigestKey(subtaskID string) string {
	return paymentDigestKey + "_" + subtaskID
}

func BuildTaskPaymentListKey(taskID string) string {
	return taskPaymentList + "_" + taskID
}

func BuildNodePaymentListKey(nodeID string) string {
	return nodePaymentList + "_" + nodeID
}

func BuildRankNotifyKey() string {
	return rankNotify
}

func BuildPaymentNotifyKey() string {
	return paymentNotify
}

type AppendInfo struct {
	Key   string
	Value string
}

// GetTrustChangedData builds the cache writes for a batch of touched rank
// rows. Nodes without an aggregated opinion yet are published with neutral
// trust.
func GetTrustChangedData(ctx context.Context, db *gorm.DB, ranks []model.LocalRank) (map[string]string, error) {
	if len(ranks) == 0 {
		return map[string]string{}, nil
	}

	nodeIDs := make([]string, len(ranks))
	for i, r := range ranks {
		nodeIDs[i] = r.NodeID
	}

	var globals []model.GlobalRank
	if err := db.Where("node_id IN (?)", nodeIDs).Find(&globals).Error; err != nil {
		log.Errorf("GetTrustChangedData failed:%v", err)
		return nil, err
	}

	globalByNode := make(map[string]*model.GlobalRank)
	for i := range globals {
		globalByNode[globals[i].NodeID] = &globals[i]
	}

	allSet := make(map[string]string)

	for _, r := range ranks {
		digest := TrustDigest{
			NodeID:            r.NodeID,
			ComputingTrust:    model.NeutralTrust,
			RequestingTrust:   model.NeutralTrust,
			PositiveComputed:  r.PositiveComputed,
			NegativeComputed:  r.NegativeComputed,
			WrongComputed:     r.WrongComputed,
			PositiveRequested: r.PositiveRequested,
			NegativeRequested: r.NegativeRequested,
			PositivePayment:   r.PositivePayment,
			NegativePayment:   r.NegativePayment,
			ModifiedDate:      r.ModifiedDate,
		}

		if g, exist := globalByNode[r.NodeID]; exist {
			digest.ComputingTrust = g.ComputingTrustValue
			digest.RequestingTrust = g.RequestingTrustValue
		}

		value, _ := json.Marshal(&digest)
		allSet[BuildTrustDigestKey(r.NodeID)] = string(value)
	}

	return allSet, nil
}

// GetPaymentChangedData builds the cache writes for a batch of new payments:
// one digest per subtask plus per-task and per-node list appends.
func GetPaymentChangedData(ctx context.Context, db *gorm.DB, payments []model.TaskPayment) (map[string]string, []*AppendInfo, error) {
	allSet := make(map[string]string)
	allAddTo := make([]*AppendInfo, 0)

	for _, p := range payments {
		digest := PaymentDigest{
			NodeID:         p.NodeID,
			TaskID:         p.TaskID,
			SubtaskID:      p.SubtaskID,
			ExpectedAmount: p.ExpectedAmount,
			CreatedDate:    p.CreatedDate,
		}

		value, _ := json.Marshal(&digest)
		allSet[BuildPaymentDigestKey(p.SubtaskID)] = string(value)

		allAddTo = append(allAddTo, &AppendInfo{Key: BuildTaskPaymentListKey(p.TaskID), Value: p.SubtaskID})
		allAddTo = append(allAddTo, &AppendInfo{Key: BuildNodePaymentListKey(p.NodeID), Value: p.SubtaskID})
	}

	return allSet, allAddTo, nil
}
