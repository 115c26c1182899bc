// Package waitlist реализует операции листа ожидания поверх хранилища:
// регистрацию, смену статуса, перенос на одну позицию назад (postpone),
// массовый импорт и расчёт позиций.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"waitlist/internal/events"
	"waitlist/internal/models"
	"waitlist/internal/ordering"
	"waitlist/internal/storage"
)

// Options - настройки сервиса.
type Options struct {
	// ListTypes - допустимые очереди. Пустой список разрешает любые значения.
	ListTypes       []string
	DefaultListType string
	BulkConcurrency int
}

// Service - операции над листом ожидания.
type Service struct {
	store     *storage.Store
	publisher events.Publisher
	log       *slog.Logger

	listTypes       []string
	defaultListType string
	bulkConcurrency int

	// partitions сериализует чтение-и-обмен внутри одной очереди.
	partitions keyedMutex
	// phones сериализует строки импорта с одинаковым телефоном.
	phones keyedMutex
}

// New создаёт сервис. publisher и log могут быть nil.
func New(store *storage.Store, publisher events.Publisher, log *slog.Logger, opts Options) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 8
	}
	if opts.DefaultListType == "" && len(opts.ListTypes) > 0 {
		opts.DefaultListType = opts.ListTypes[0]
	}
	return &Service{
		store:           store,
		publisher:       publisher,
		log:             log.With("component", "waitlist"),
		listTypes:       opts.ListTypes,
		defaultListType: opts.DefaultListType,
		bulkConcurrency: opts.BulkConcurrency,
	}
}

// ListTypes возвращает настроенные очереди.
func (s *Service) ListTypes() []string {
	out := make([]string, len(s.listTypes))
	copy(out, s.listTypes)
	return out
}

// RegisterInput - данные для регистрации и для строки массового импорта.
type RegisterInput struct {
	Name     string       `json:"name"`
	JobGroup string       `json:"job_group"`
	Years    models.Years `json:"years"`
	Phone    string       `json:"phone"`
	ListType string       `json:"list_type"`
}

// Register добавляет участника в конец очереди.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Entry, error) {
	in = normalize(in)
	if in.Name == "" || in.Phone == "" {
		return models.Entry{}, fmt.Errorf("%w: имя и телефон обязательны", ErrValidation)
	}
	listType, err := s.resolveListType(in.ListType)
	if err != nil {
		return models.Entry{}, err
	}

	e := models.Entry{
		Name:     in.Name,
		JobGroup: in.JobGroup,
		Years:    in.Years,
		Phone:    in.Phone,
		ListType: listType,
		Status:   models.StatusWaiting,
	}
	if _, err := s.store.Insert(ctx, &e); err != nil {
		return models.Entry{}, err
	}

	s.log.Info("участник зарегистрирован", "id", e.ID, "list_type", e.ListType)
	s.publish(ctx, events.Event{Type: events.EntryRegistered, EntryID: e.ID, ListType: e.ListType})
	return e, nil
}

// List возвращает записи очереди listType ("" или "all" - все очереди):
// сначала ожидающие, затем остальные, внутри групп - по ключу сортировки.
func (s *Service) List(ctx context.Context, listType string) ([]models.Entry, error) {
	f := storage.Filter{}
	if listType != "" && listType != "all" {
		f.ListType = listType
	}
	entries, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		wi := entries[i].Status == models.StatusWaiting
		wj := entries[j].Status == models.StatusWaiting
		if wi != wj {
			return wi
		}
		return ordering.Less(entries[i], entries[j])
	})
	return entries, nil
}

// UpdateStatus выставляет статус записи. Возвращает число изменённых записей,
// для несуществующего id - 0 без ошибки.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	if !models.IsAdminStatus(status) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, err := s.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	unlock := s.partitions.Lock(current.ListType)
	changes, err := s.store.UpdateStatus(ctx, id, status)
	unlock()
	if err != nil {
		return 0, err
	}

	if changes > 0 {
		s.log.Info("статус изменён", "id", id, "from", current.Status, "to", status)
		s.publish(ctx, events.Event{
			Type:     events.EntryStatusChanged,
			EntryID:  id,
			ListType: current.ListType,
			Data:     map[string]interface{}{"from": current.Status, "to": status},
		})
	}
	return changes, nil
}

// RankedEntry - запись с числом активных участников перед ней.
type RankedEntry struct {
	models.Entry
	Ahead int `json:"ahead"`
}

// StatusByPhone возвращает все активные записи номера по всем очередям,
// у каждой - свой ahead, посчитанный по её очереди.
func (s *Service) StatusByPhone(ctx context.Context, phone string) ([]RankedEntry, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}

	own, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	partitions := make(map[string][]models.Entry)
	var result []RankedEntry
	for _, e := range own {
		if !models.IsActive(e.Status) {
			continue
		}
		partition, ok := partitions[e.ListType]
		if !ok {
			partition, err = s.store.List(ctx, storage.Filter{ListType: e.ListType, StatusIn: models.ActiveStatuses})
			if err != nil {
				return nil, err
			}
			partitions[e.ListType] = partition
		}
		result = append(result, RankedEntry{
			Entry: e,
			Ahead: ordering.RankOf(partition, e, models.ActiveStatuses),
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return ordering.Less(result[i].Entry, result[j].Entry) })
	return result, nil
}

func (s *Service) resolveListType(listType string) (string, error) {
	if listType == "" {
		return s.defaultListType, nil
	}
	if len(s.listTypes) == 0 {
		return listType, nil
	}
	for _, lt := range s.listTypes {
		if lt == listType {
			return listType, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidListType, listType)
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("не удалось опубликовать событие", "type", ev.Type, "error", err)
	}
}

func normalize(in RegisterInput) RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.JobGroup = strings.TrimSpace(in.JobGroup)
	in.Phone = strings.TrimSpace(in.Phone)
	in.ListType = strings.TrimSpace(in.ListType)
	return in
}
