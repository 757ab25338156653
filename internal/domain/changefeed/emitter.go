package changefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fatih/structs"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const DefaultTopic = "changes"

// Emitter publishes committed writes. It never fails the write that
// triggered it, errors are only logged.
type Emitter interface {
	Insert(ctx context.Context, table string, row any)
	Update(ctx context.Context, table string, old, new any)
	Delete(ctx context.Context, table string, old any)
}

type emitter struct {
	publisher pubsub.Publisher
	topic     string
}

func NewEmitter(publisher pubsub.Publisher, topic string) *emitter {
	if topic == "" {
		topic = DefaultTopic
	}

	return &emitter{publisher: publisher, topic: topic}
}

func (e *emitter) Insert(ctx context.Context, table string, row any) {
	e.emit(ctx, model.ChangeEvent{Table: table, Type: model.ChangeInsert, New: ToRow(row)})
}

func (e *emitter) Update(ctx context.Context, table string, old, new any) {
	e.emit(ctx, model.ChangeEvent{Table: table, Type: model.ChangeUpdate, Old: ToRow(old), New: ToRow(new)})
}

func (e *emitter) Delete(ctx context.Context, table string, old any) {
	e.emit(ctx, model.ChangeEvent{Table: table, Type: model.ChangeDelete, Old: ToRow(old)})
}

func (e *emitter) emit(ctx context.Context, event model.ChangeEvent) {
	event.CommitTimestamp = time.Now().UTC().Format(model.DefaultTimeLayout)

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal change event: %v", err)
		return
	}

	err = e.publisher.Publish(ctx, e.topic, &pubsub.Pack{Key: []byte(event.Table), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish change event of %s: %v", event.Table, err)
	}
}

// ToRow encodes a json-tagged struct (or a pointer to it) as a row map. Nil
// gives a nil row.
func ToRow(v any) map[string]any {
	if v == nil {
		return nil
	}

	if !structs.IsStruct(v) {
		return nil
	}

	s := structs.New(v)
	s.TagName = "json"
	return s.Map()
}

type noopEmitter struct{}

// NewNoopEmitter drops every event.
func NewNoopEmitter() noopEmitter {
	return noopEmitter{}
}

func (noopEmitter) Insert(context.Context, string, any)      {}
func (noopEmitter) Update(context.Context, string, any, any) {}
func (noopEmitter) Delete(context.Context, string, any)      {}
