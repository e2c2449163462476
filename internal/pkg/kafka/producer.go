package kafka

import (
	"Classfeed/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// FeedEvent 投递给下游分析消费方的动态审计事件
type FeedEvent struct {
	Type    string    `json:"type"`
	PostID  string    `json:"postId"`
	ActorID string    `json:"actorId"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

type Producer struct {
	sp    sarama.SyncProducer
	topic string
}

// NewProducer 构造函数
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	c := sarama.NewConfig()
	c.Producer.Return.Successes = true
	c.Producer.RequiredAcks = sarama.WaitForLocal

	if cfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = cfg.Sasl.Username
		c.Net.SASL.Password = cfg.Sasl.Password
	}

	sp, err := sarama.NewSyncProducer(cfg.Brokers, c)
	if err != nil {
		return nil, errors.Wrap(err, "create sync producer")
	}

	return &Producer{sp: sp, topic: cfg.AuditTopic}, nil
}

// Publish 发布事件。发布失败只记日志，绝不影响主流程。
// Producer 为 nil 时（未启用 Kafka）直接跳过。
func (p *Producer) Publish(ctx context.Context, evt *FeedEvent) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.ErrorContext(ctx, "marshal feed event failed", "type", evt.Type, "err", err)
		return
	}

	go func() {
		_, _, err := p.sp.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(evt.PostID),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			log.Error("publish feed event failed", "type", evt.Type, "postID", evt.PostID, "err", err)
		}
	}()
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.sp.Close()
}
