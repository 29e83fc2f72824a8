// Package events publishes domain events for other services (dashboards, notifiers)
// to pick up. Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const ChannelJobPosted = "EVENT_JOB_POSTED"

// JobPosted is sent after a job and its eligibility links commit.
type JobPosted struct {
	Type          string `json:"type"`
	JobID         uint   `json:"jobId"`
	CompanyName   string `json:"companyName"`
	PostedBy      string `json:"postedBy"`
	EligibleCount int    `json:"eligibleCount"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher sends JSON payloads over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// NopPublisher drops every event. Used when no Redis URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
