package ranking

import (
	"github.com/rqzrqh/compute_market/dao"
	"golang.org/x/xerrors"
)

var (
	// ErrBadNodeID rejects ledger operations on an empty node id.
	ErrBadNodeID = xerrors.New("empty node id")
	// ErrUnknownOutcome rejects outcomes outside the closed set.
	ErrUnknownOutcome = xerrors.New("unknown outcome")
	// ErrBadEstimate rejects gossip whose trust estimate is not a finite
	// number.
	ErrBadEstimate = xerrors.New("trust estimate is not finite")
)

// Outcome is one observed interaction with a remote node. The set is closed,
// every value maps onto exactly one ledger counter.
type Outcome int

const (
	SubtaskComputed Outcome = iota + 1
	SubtaskWrongComputed
	SubtaskComputeFailed
	RequestHonored
	RequestDenied
	PaymentReceived
	PaymentWithheld
	ResourceDelivered
	ResourceFailed
)

func (o Outcome) String() string {
	switch o {
	case SubtaskComputed:
		return "subtask_computed"
	case SubtaskWrongComputed:
		return "subtask_wrong_computed"
	case SubtaskComputeFailed:
		return "subtask_compute_failed"
	case RequestHonored:
		return "request_honored"
	case RequestDenied:
		return "request_denied"
	case PaymentReceived:
		return "payment_received"
	case PaymentWithheld:
		return "payment_withheld"
	case ResourceDelivered:
		return "resource_delivered"
	case ResourceFailed:
		return "resource_failed"
	}
	return "unknown"
}

func (o Outcome) delta() (dao.LocalRankDelta, error) {
	var d dao.LocalRankDelta

	switch o {
	case SubtaskComputed:
		d.PositiveComputed = 1
	case SubtaskWrongComputed:
		d.WrongComputed = 1
	case SubtaskComputeFailed:
		d.NegativeComputed = 1
	case RequestHonored:
		d.PositiveRequested = 1
	case RequestDenied:
		d.NegativeRequested = 1
	case PaymentReceived:
		d.PositivePayment = 1
	case PaymentWithheld:
		d.NegativePayment = 1
	case ResourceDelivered:
		d.PositiveResource = 1
	case ResourceFailed:
		d.NegativeResource = 1
	default:
		return d, ErrUnknownOutcome
	}

	return d, nil
}
