package pgdb

import (
	"fmt"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	watermilldb "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/watermill"
	"github.com/ThreeDotsLabs/watermill"
	wmsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
)

// jsonbSchema stores message payloads as JSONB so the event repository can
// filter on the aggregate id inside the payload.
type jsonbSchema struct {
	wmsql.DefaultPostgreSQLSchema
}

func (s jsonbSchema) SchemaInitializingQueries(topic string) []wmsql.Query {
	table := s.MessagesTable(topic)
	createQuery := `CREATE TABLE IF NOT EXISTS ` + table + ` (
	"offset" SERIAL PRIMARY KEY,
	"uuid" VARCHAR(36) NOT NULL,
	"created_at" TIMESTAMP NOT NULL DEFAULT now(),
	"payload" JSONB DEFAULT NULL,
	"metadata" JSON DEFAULT NULL,
	"transaction_id" xid8 NOT NULL
)`
	return []wmsql.Query{{Query: createQuery}}
}

func NewEventRepository(config ...interface{}) (domain.EventRepository, error) {
	db, err := parseConfig(config...)
	if err != nil {
		return nil, fmt.Errorf("cannot open event repository: %w", err)
	}

	publisher, err := wmsql.NewPublisher(
		db,
		wmsql.PublisherConfig{
			SchemaAdapter:        jsonbSchema{},
			AutoInitializeSchema: true,
		},
		watermill.NewSlogLogger(nil),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	return watermilldb.NewWatermillEventRepository(publisher, db), nil
}
