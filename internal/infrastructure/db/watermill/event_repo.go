package watermilldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	log "github.com/sirupsen/logrus"
)

type subscriber struct {
	topic   string
	handler func(events []domain.Event)
}

type eventRepository struct {
	publisher message.Publisher
	db        *sql.DB

	subscribers    map[string][]subscriber // topic -> subscribers
	subscriberLock *sync.Mutex
}

func NewWatermillEventRepository(publisher message.Publisher, db *sql.DB) domain.EventRepository {
	return &eventRepository{
		publisher:      publisher,
		db:             db,
		subscribers:    make(map[string][]subscriber),
		subscriberLock: &sync.Mutex{},
	}
}

func (e *eventRepository) ClearRegisteredHandlers(topics ...string) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if len(topics) == 0 {
		e.subscribers = make(map[string][]subscriber)
		return
	}

	for _, topic := range topics {
		delete(e.subscribers, topic)
	}
}

func (e *eventRepository) Close() {
	//nolint:errcheck
	e.publisher.Close()
}

func (e *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()

	if _, ok := e.subscribers[topic]; !ok {
		e.subscribers[topic] = make([]subscriber, 0)
	}

	e.subscribers[topic] = append(e.subscribers[topic], subscriber{
		topic:   topic,
		handler: handler,
	})
}

func (e *eventRepository) Save(
	ctx context.Context, topic string, id string, events []domain.Event,
) error {
	if err := e.publish(topic, events); err != nil {
		return err
	}
	// dispatch events to subscribers
	if err := e.dispatch(topic, id); err != nil {
		log.WithError(err).Error("failed to dispatch saved events")
	}

	return nil
}

func (e *eventRepository) dispatch(topic string, id string) error {
	// get all events for the topic from the database
	events, err := e.getAllEvents(context.Background(), topic, id)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	// run the handlers in go routines
	e.subscriberLock.Lock()
	defer e.subscriberLock.Unlock()
	for _, subscriber := range e.subscribers[topic] {
		go subscriber.handler(events)
	}
	return nil
}

// getAllEvents queries the database for all historical messages in a topic
// filtered by id. Watermill table name is (watermill_<topic>).
// Messages are filtered by the Id field in the JSON payload (thanks to
// postgres JSONB type) and ordered by offset.
func (e *eventRepository) getAllEvents(
	ctx context.Context, topic, id string,
) ([]domain.Event, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := fmt.Sprintf(
		`SELECT payload FROM watermill_%s WHERE payload->>'Id' = $1 ORDER BY "offset" ASC;`,
		topic,
	)

	rows, err := e.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to query messages for topic %s with id %s: %w",
			topic, id, err,
		)
	}
	// nolint
	defer rows.Close()

	records := make([][]byte, 0)
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan message payload: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(
			"error iterating messages for topic %s with id %s: %w", topic, id, err,
		)
	}

	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		event, err := deserializeEvent(record)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(record))
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

func (e *eventRepository) publish(topic string, events []domain.Event) error {
	watermillMessages := toWatermillMessages(events)
	return e.publisher.Publish(topic, watermillMessages...)
}

func toWatermillMessages(events []domain.Event) []*message.Message {
	watermillMessages := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}

		watermillMessages = append(
			watermillMessages,
			message.NewMessage(watermill.NewUUID(), payload),
		)
	}

	return watermillMessages
}

func deserializeAs[E domain.Event](buf []byte) (domain.Event, error) {
	var event E
	if err := json.Unmarshal(buf, &event); err != nil {
		return nil, err
	}
	return event, nil
}

var eventDeserializers = map[domain.EventType]func([]byte) (domain.Event, error){
	domain.EventTypeDelayedRedeemCreated:             deserializeAs[domain.DelayedRedeemCreated],
	domain.EventTypeDelayedRedeemsClaimed:            deserializeAs[domain.DelayedRedeemsClaimed],
	domain.EventTypeDelayedRedeemsCompleted:          deserializeAs[domain.DelayedRedeemsCompleted],
	domain.EventTypeDelayedRedeemsPrincipalClaimed:   deserializeAs[domain.DelayedRedeemsPrincipalClaimed],
	domain.EventTypeDelayedRedeemsPrincipalCompleted: deserializeAs[domain.DelayedRedeemsPrincipalCompleted],
	domain.EventTypeQuotaRateSet:                     deserializeAs[domain.QuotaRateSet],
	domain.EventTypeMaxFreeQuotaSet:                  deserializeAs[domain.MaxFreeQuotaSet],
	domain.EventTypeRedeemFeeRateSet:                 deserializeAs[domain.RedeemFeeRateSet],
	domain.EventTypeRedeemDelaySet:                   deserializeAs[domain.RedeemDelaySet],
	domain.EventTypeRedeemPrincipalDelaySet:          deserializeAs[domain.RedeemPrincipalDelaySet],
	domain.EventTypeWrappedAssetListAdded:            deserializeAs[domain.WrappedAssetListAdded],
	domain.EventTypeWrappedAssetListRemoved:          deserializeAs[domain.WrappedAssetListRemoved],
	domain.EventTypeWhitelistAdded:                   deserializeAs[domain.WhitelistAdded],
	domain.EventTypeWhitelistRemoved:                 deserializeAs[domain.WhitelistRemoved],
	domain.EventTypeBlacklistAdded:                   deserializeAs[domain.BlacklistAdded],
	domain.EventTypeBlacklistRemoved:                 deserializeAs[domain.BlacklistRemoved],
	domain.EventTypeTokensPaused:                     deserializeAs[domain.TokensPaused],
	domain.EventTypeTokensUnpaused:                   deserializeAs[domain.TokensUnpaused],
	domain.EventTypeWhitelistEnabledSet:              deserializeAs[domain.WhitelistEnabledSet],
	domain.EventTypeManagementFeeWithdrawn:           deserializeAs[domain.ManagementFeeWithdrawn],
}

func deserializeEvent(buf []byte) (domain.Event, error) {
	var header struct {
		Type domain.EventType
	}
	if err := json.Unmarshal(buf, &header); err != nil {
		return nil, err
	}
	deserialize, ok := eventDeserializers[header.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", header.Type)
	}
	return deserialize(buf)
}
