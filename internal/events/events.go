// Package events публикует доменные события листа ожидания во внешний брокер.
// Ошибки публикации логируются и не прерывают обработку запроса.
package events

import (
	"context"
	"time"
)

// Типы событий, они же routing key
const (
	EntryRegistered    = "entry.registered"
	EntryStatusChanged = "entry.status_changed"
	EntryPostponed     = "entry.postponed"
	EntriesImported    = "entries.imported"
)

// Event - сообщение о произошедшем изменении.
type Event struct {
	Type       string                 `json:"type"`
	EntryID    uint                   `json:"entry_id,omitempty"`
	ListType   string                 `json:"list_type,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher отправляет события потребителям.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop - публикатор, который ничего не отправляет. Используется, когда брокер не настроен.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
