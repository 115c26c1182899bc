package waitlist

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"waitlist/internal/events"
	"waitlist/internal/models"

	"golang.org/x/sync/errgroup"
)

// BulkError - ошибка одной строки импорта.
type BulkError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BulkResult - итог импорта. Частичный успех - обычный результат.
type BulkResult struct {
	Inserted int         `json:"inserted"`
	Updated  int         `json:"updated"`
	Errors   []BulkError `json:"errors"`
}

// Total - число успешно обработанных строк.
func (r BulkResult) Total() int { return r.Inserted + r.Updated }

// BulkUpsert импортирует строки по телефону: новая запись вставляется,
// существующие обновляются без изменения created_at. Строки обрабатываются
// параллельно и независимо, ответ собирается после завершения всех строк.
func (s *Service) BulkUpsert(ctx context.Context, rows []RegisterInput) BulkResult {
	var (
		mu  sync.Mutex
		res = BulkResult{Errors: []BulkError{}}
		g   errgroup.Group
	)
	g.SetLimit(s.bulkConcurrency)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			inserted, err := s.upsertOne(ctx, row)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Errors = append(res.Errors, BulkError{Index: i, Error: err.Error()})
			case inserted:
				res.Inserted++
			default:
				res.Updated++
			}
			// строки не прерывают друг друга
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].Index < res.Errors[j].Index })

	s.log.Info("импорт завершён", "rows", len(rows), "inserted", res.Inserted, "updated", res.Updated, "errors", len(res.Errors))
	s.publish(ctx, events.Event{
		Type: events.EntriesImported,
		Data: map[string]interface{}{
			"inserted": res.Inserted,
			"updated":  res.Updated,
			"errors":   len(res.Errors),
		},
	})
	return res
}

func (s *Service) upsertOne(ctx context.Context, row RegisterInput) (bool, error) {
	row = normalize(row)
	if row.Phone == "" {
		return false, fmt.Errorf("%w: не указан телефон", ErrValidation)
	}
	listType, err := s.resolveListType(row.ListType)
	if err != nil {
		return false, err
	}

	unlockPhone := s.phones.Lock(row.Phone)
	defer unlockPhone()
	unlockPartitions, err := s.lockPhonePartitions(ctx, row.Phone, listType)
	if err != nil {
		return false, err
	}
	defer unlockPartitions()

	e := models.Entry{
		Name:     row.Name,
		JobGroup: row.JobGroup,
		Years:    row.Years,
		Phone:    row.Phone,
		ListType: listType,
		Status:   models.StatusWaiting,
	}
	return s.store.UpsertByPhone(ctx, &e)
}

// lockPhonePartitions захватывает все очереди, которые затронет импорт строки:
// целевую и текущие очереди записей с этим телефоном. Обновление по телефону
// переносит записи между очередями, и перенос не должен пересечься с postpone
// в исходной очереди. Если под блокировкой набор очередей изменился
// (например, регистрация добавила запись с тем же телефоном), захват повторяется.
func (s *Service) lockPhonePartitions(ctx context.Context, phone, target string) (func(), error) {
	rows, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	for {
		keys := phonePartitions(target, rows)
		unlock := s.partitions.LockAll(keys)

		fresh, err := s.store.FindByPhone(ctx, phone)
		if err != nil {
			unlock()
			return nil, err
		}
		if covers(keys, fresh) {
			return unlock, nil
		}
		unlock()
		rows = fresh
	}
}

func phonePartitions(target string, rows []models.Entry) []string {
	keys := []string{target}
	for _, e := range rows {
		keys = append(keys, e.ListType)
	}
	return keys
}

func covers(keys []string, rows []models.Entry) bool {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	for _, e := range rows {
		if _, ok := set[e.ListType]; !ok {
			return false
		}
	}
	return true
}
