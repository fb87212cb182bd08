package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const eventStoreDir = "events"

type eventSubscriber struct {
	topic   string
	handler func(events []domain.Event)
}

type eventDTO struct {
	Key         string
	Topic       string
	AggregateId string
	Seq         uint64
	Payload     []byte
}

type eventRepository struct {
	store *badgerhold.Store
	seq   *badger.Sequence

	subscribers    map[string][]eventSubscriber
	subscriberLock *sync.Mutex
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	baseDir, logger, err := parseConfig(config...)
	if err != nil {
		return nil, err
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, eventStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %s", err)
	}
	seq, err := store.Badger().GetSequence([]byte("event_seq"), 100)
	if err != nil {
		return nil, fmt.Errorf("failed to open event sequence: %s", err)
	}

	return &eventRepository{
		store:          store,
		seq:            seq,
		subscribers:    make(map[string][]eventSubscriber),
		subscriberLock: &sync.Mutex{},
	}, nil
}

func (r *eventRepository) Save(
	ctx context.Context, topic string, id string, events []domain.Event,
) error {
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event: %w", err)
		}
		seq, err := r.seq.Next()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		dto := eventDTO{
			Key:         fmt.Sprintf("%s/%d", topic, seq),
			Topic:       topic,
			AggregateId: id,
			Seq:         seq,
			Payload:     payload,
		}
		if err := r.store.Insert(dto.Key, &dto); err != nil {
			if errors.Is(err, badger.ErrConflict) {
				attempts := 1
				for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
					time.Sleep(100 * time.Millisecond)
					err = r.store.Insert(dto.Key, &dto)
					attempts++
				}
			}
			if err != nil {
				return fmt.Errorf("failed to store event: %w", err)
			}
		}
	}

	if err := r.dispatch(topic, id); err != nil {
		log.WithError(err).Error("failed to dispatch saved events")
	}
	return nil
}

func (r *eventRepository) RegisterEventsHandler(
	topic string, handler func(events []domain.Event),
) {
	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()

	r.subscribers[topic] = append(r.subscribers[topic], eventSubscriber{
		topic:   topic,
		handler: handler,
	})
}

func (r *eventRepository) ClearRegisteredHandlers(topics ...string) {
	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()

	if len(topics) == 0 {
		r.subscribers = make(map[string][]eventSubscriber)
		return
	}
	for _, topic := range topics {
		delete(r.subscribers, topic)
	}
}

func (r *eventRepository) Close() {
	// nolint:all
	r.seq.Release()
	// nolint:all
	r.store.Close()
}

func (r *eventRepository) dispatch(topic, id string) error {
	var dtos []eventDTO
	query := badgerhold.Where("Topic").Eq(topic).And("AggregateId").Eq(id)
	if err := r.store.Find(&dtos, query); err != nil {
		return fmt.Errorf("failed to get events for topic %s: %w", topic, err)
	}
	if len(dtos) == 0 {
		return nil
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Seq < dtos[j].Seq })

	events := make([]domain.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, err := decodeEvent(dto.Payload)
		if err != nil {
			log.WithError(err).Warnf("failed to deserialize event: %s", string(dto.Payload))
			continue
		}
		events = append(events, event)
	}

	r.subscriberLock.Lock()
	defer r.subscriberLock.Unlock()
	for _, sub := range r.subscribers[topic] {
		go sub.handler(events)
	}
	return nil
}
