package waitlist

import (
	"context"
	"errors"

	"waitlist/internal/events"
	"waitlist/internal/models"
	"waitlist/internal/ordering"
	"waitlist/internal/storage"
)

// Person - краткие данные участника для подтверждения переноса.
type Person struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PostponeResult - кого с кем поменяли местами.
type PostponeResult struct {
	Current Person `json:"current"`
	Next    Person `json:"next"`
}

// Postpone переносит запись на одну позицию назад: её created_at меняется
// местами с ближайшей следующей ожидающей записью той же очереди.
// Порядок остальных записей не меняется.
func (s *Service) Postpone(ctx context.Context, id uint) (PostponeResult, error) {
	current, unlock, err := s.lockEntryPartition(ctx, id)
	if err != nil {
		return PostponeResult{}, err
	}
	defer unlock()

	waiting, err := s.store.List(ctx, storage.Filter{
		ListType: current.ListType,
		StatusIn: []string{models.StatusWaiting},
	})
	if err != nil {
		return PostponeResult{}, err
	}

	next, ok := ordering.NextWaiting(waiting, current)
	if !ok {
		return PostponeResult{}, ErrNoNextPerson
	}

	if err := s.store.SwapCreatedAt(ctx, current, next); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return PostponeResult{}, ErrPersonNotFound
		}
		return PostponeResult{}, err
	}

	s.log.Info("участники поменялись местами", "list_type", current.ListType, "current", current.ID, "next", next.ID)
	s.publish(ctx, events.Event{
		Type:     events.EntryPostponed,
		EntryID:  current.ID,
		ListType: current.ListType,
		Data:     map[string]interface{}{"swapped_with": next.ID},
	})

	return PostponeResult{
		Current: Person{ID: current.ID, Name: current.Name},
		Next:    Person{ID: next.ID, Name: next.Name},
	}, nil
}

// lockEntryPartition захватывает мьютекс очереди записи и перечитывает её
// под блокировкой. Если за это время запись переехала в другую очередь
// (импорт меняет list_type), блокировка берётся заново.
func (s *Service) lockEntryPartition(ctx context.Context, id uint) (models.Entry, func(), error) {
	e, err := s.getEntry(ctx, id)
	if err != nil {
		return models.Entry{}, nil, err
	}
	for {
		unlock := s.partitions.Lock(e.ListType)
		fresh, err := s.getEntry(ctx, id)
		if err != nil {
			unlock()
			return models.Entry{}, nil, err
		}
		if fresh.ListType == e.ListType {
			return fresh, unlock, nil
		}
		unlock()
		e = fresh
	}
}

func (s *Service) getEntry(ctx context.Context, id uint) (models.Entry, error) {
	e, err := s.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Entry{}, ErrPersonNotFound
	}
	return e, err
}
