package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("notify")

const channelPrefix = "compute_market.events."

// Publisher fans events out to interested consumers. Delivery is
// fire-and-forget, failures never reach the caller.
type Publisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}

type envelope struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type RedisPublisher struct {
	rds *redis.Client
}

func NewRedisPublisher(rds *redis.Client) *RedisPublisher {
	return &RedisPublisher{rds: rds}
}

func (p *RedisPublisher) Publish(ctx context.Context, event string, payload interface{}) {
	env := envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	data, err := json.Marshal(&env)
	if err != nil {
		log.Errorf("marshal event %v failed:%v", event, err)
		return
	}

	if err := p.rds.Publish(ctx, channelPrefix+event, string(data)).Err(); err != nil {
		log.Warnf("publish event %v failed:%v", event, err)
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event string, payload interface{}) {}
