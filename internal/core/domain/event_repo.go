package domain

import "context"

const (
	RedeemTopic = "redeems"
	AdminTopic  = "admin"
)

type EventRepository interface {
	Save(ctx context.Context, topic string, id string, events []Event) error
	RegisterEventsHandler(topic string, handler func(events []Event))
	ClearRegisteredHandlers(topics ...string)
	Close()
}
