package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/wager-settlement-poc/pkg/contracts/events"
)

// KafkaPublisher publica eventos wager_settled após o commit da liquidação.
// Fire-and-forget do ponto de vista do engine: falha de publicação é logada
// pelo chamador e nunca desfaz a liquidação.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.WagerID),
		Value: b,
	})
}
