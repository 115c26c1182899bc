package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waitlist/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound - записи с таким идентификатором нет.
var ErrNotFound = errors.New("запись не найдена")

// Filter ограничивает выборку List. Пустые поля не фильтруют.
type Filter struct {
	ListType string
	StatusIn []string
}

// Insert сохраняет новую запись и возвращает её id. Если CreatedAt не задан,
// проставляется следующая метка монотонных часов хранилища. Заданная метка,
// совпавшая с существующей, сдвигается на микросекунды вперёд.
func (s *Store) Insert(ctx context.Context, e *models.Entry) (uint, error) {
	if e.Status == "" {
		e.Status = models.StatusWaiting
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.next()
		if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
			return 0, fmt.Errorf("ошибка добавления записи: %w", err)
		}
		return e.ID, nil
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		ts, err := tx.freeCreatedAt(ctx, e.CreatedAt)
		if err != nil {
			return err
		}
		e.CreatedAt = ts
		s.clock.observe(ts)
		if err := tx.db.WithContext(ctx).Create(e).Error; err != nil {
			return fmt.Errorf("ошибка добавления записи: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// freeCreatedAt возвращает ближайшую к ts метку, не занятую другой записью.
func (s *Store) freeCreatedAt(ctx context.Context, ts time.Time) (time.Time, error) {
	ts = ts.UTC().Truncate(time.Microsecond)
	for {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Entry{}).Where("created_at = ?", ts).Count(&n).Error; err != nil {
			return time.Time{}, fmt.Errorf("ошибка проверки created_at: %w", err)
		}
		if n == 0 {
			return ts, nil
		}
		ts = ts.Add(time.Microsecond)
	}
}

// UpdateStatus меняет статус записи и возвращает число изменённых строк.
// Отсутствие записи ошибкой не считается: вернётся 0.
func (s *Store) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("ошибка смены статуса: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GetByID ищет запись по id.
func (s *Store) GetByID(ctx context.Context, id uint) (models.Entry, error) {
	var e models.Entry
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("ошибка получения записи %d: %w", id, err)
	}
	return e, nil
}

// List возвращает записи по фильтру. Порядок не гарантируется,
// сортировку делает пакет ordering.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Entry, error) {
	q := s.db.WithContext(ctx).Model(&models.Entry{})
	if f.ListType != "" {
		q = q.Where("list_type = ?", f.ListType)
	}
	if len(f.StatusIn) > 0 {
		q = q.Where("status IN ?", f.StatusIn)
	}

	var entries []models.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("ошибка получения списка: %w", err)
	}
	return entries, nil
}

// FindByPhone возвращает все записи с данным номером телефона.
func (s *Store) FindByPhone(ctx context.Context, phone string) ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("ошибка поиска по телефону: %w", err)
	}
	return entries, nil
}

// SetCreatedAt переписывает ключ сортировки записи. Используется только postpone.
func (s *Store) SetCreatedAt(ctx context.Context, id uint, ts time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", id).Update("created_at", ts)
	if res.Error != nil {
		return fmt.Errorf("ошибка обновления created_at записи %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapCreatedAt обменивает ключи сортировки двух записей одной транзакцией:
// либо меняются обе записи, либо ни одна.
func (s *Store) SwapCreatedAt(ctx context.Context, a, b models.Entry) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.SetCreatedAt(ctx, a.ID, b.CreatedAt); err != nil {
			return err
		}
		return tx.SetCreatedAt(ctx, b.ID, a.CreatedAt)
	})
}

// UpsertByPhone обновляет изменяемые поля всех записей с тем же телефоном,
// сохраняя created_at, либо вставляет новую запись. inserted=true для вставки.
func (s *Store) UpsertByPhone(ctx context.Context, e *models.Entry) (inserted bool, err error) {
	err = s.Transaction(ctx, func(tx *Store) error {
		var existing models.Entry
		findErr := tx.db.WithContext(ctx).Where("phone = ?", e.Phone).Order("id").Take(&existing).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			if _, err := tx.Insert(ctx, e); err != nil {
				return err
			}
			inserted = true
			return nil
		}
		if findErr != nil {
			return fmt.Errorf("ошибка поиска по телефону: %w", findErr)
		}

		res := tx.db.WithContext(ctx).Model(&models.Entry{}).Where("phone = ?", e.Phone).Updates(map[string]interface{}{
			"name":      e.Name,
			"job_group": e.JobGroup,
			"years":     e.Years,
			"list_type": e.ListType,
		})
		if res.Error != nil {
			return fmt.Errorf("ошибка обновления по телефону: %w", res.Error)
		}
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
		e.Status = existing.Status
		return nil
	})
	return inserted, err
}

// StatusCount - число записей с данным статусом в очереди.
type StatusCount struct {
	ListType string
	Status   string
	Count    int64
}

// CountByStatus считает записи в разрезе очередей и статусов.
func (s *Store) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := s.db.WithContext(ctx).Model(&models.Entry{}).
		Select("list_type, status, COUNT(*) AS count").
		Group("list_type, status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по статусам: %w", err)
	}
	return counts, nil
}
