package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter - часть *kafka.Writer, нужная издателю
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	placed   MessageWriter
	accepted MessageWriter
}

func NewKafkaPublisher(placed, accepted MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{placed: placed, accepted: accepted}
}

// NewWriter создаёт writer топика; brokers - список через запятую
func NewWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return writeJSON(ctx, p.placed, e.CarID, e)
}

func (p *KafkaPublisher) PublishBetAccepted(ctx context.Context, e BetAccepted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return writeJSON(ctx, p.accepted, e.CarID, e)
}

// Ключ - car_id, чтобы события одного автомобиля шли в одну партицию по порядку
func writeJSON(ctx context.Context, w MessageWriter, carID int64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(carID, 10)),
		Value: b,
		Time:  time.Now(),
	})
}
