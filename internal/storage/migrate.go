package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waitlist/internal/models"
	"waitlist/internal/ordering"

	"gorm.io/gorm"
)

// Migrate создаёт или обновляет таблицу waiting_list. Базы старого формата
// без list_type получают колонку, а пустые значения - тип по умолчанию.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	hadTable := db.Migrator().HasTable(&models.Entry{})
	hadListType := hadTable && db.Migrator().HasColumn(&models.Entry{}, "ListType")

	if err := db.AutoMigrate(&models.Entry{}); err != nil {
		return fmt.Errorf("ошибка при миграции: %w", err)
	}
	if hadTable && !hadListType {
		s.log.Info("колонка list_type добавлена", "table", models.Entry{}.TableName())
	}
	if hadTable {
		// колонки, добавленные к старой таблице, заполнены NULL
		err := db.Exec(`UPDATE waiting_list SET
			job_group = COALESCE(job_group, ''),
			years = COALESCE(years, 0),
			updated_at = COALESCE(updated_at, created_at)
			WHERE job_group IS NULL OR years IS NULL OR updated_at IS NULL`).Error
		if err != nil {
			return fmt.Errorf("ошибка заполнения старых записей: %w", err)
		}
	}

	if s.defaultListType != "" {
		res := db.Model(&models.Entry{}).
			Where("list_type IS NULL OR list_type = ?", "").
			Update("list_type", s.defaultListType)
		if res.Error != nil {
			return fmt.Errorf("ошибка заполнения list_type: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			s.log.Info("старым записям проставлен list_type", "list_type", s.defaultListType, "rows", res.RowsAffected)
		}
	}

	if err := s.respaceTies(ctx); err != nil {
		return err
	}
	return s.seedClock(ctx)
}

// respaceTies делает created_at уникальным. Старые базы хранят метки с точностью
// до секунды, и записи одного импорта совпадают по времени. Записи проходят
// в порядке (created_at, id), совпавшие сдвигаются на целые микросекунды,
// поэтому порядок внутри каждой очереди сохраняется.
func (s *Store) respaceTies(ctx context.Context) error {
	return s.Transaction(ctx, func(tx *Store) error {
		var entries []models.Entry
		if err := tx.db.WithContext(ctx).Select("id", "list_type", "created_at").Find(&entries).Error; err != nil {
			return fmt.Errorf("ошибка чтения меток: %w", err)
		}
		ordering.Sort(entries)

		var (
			prev  time.Time
			moved int
		)
		for i, e := range entries {
			ts := e.CreatedAt.UTC().Truncate(time.Microsecond)
			if i > 0 && !ts.After(prev) {
				ts = prev.Add(time.Microsecond)
			}
			prev = ts
			if ts.Equal(e.CreatedAt) {
				continue
			}
			err := tx.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", e.ID).UpdateColumn("created_at", ts).Error
			if err != nil {
				return fmt.Errorf("ошибка сдвига метки записи %d: %w", e.ID, err)
			}
			moved++
		}
		if moved > 0 {
			s.log.Info("совпадающие created_at разнесены", "rows", moved)
		}
		return nil
	})
}

// seedClock продолжает монотонные часы с максимального created_at в базе.
func (s *Store) seedClock(ctx context.Context) error {
	var last models.Entry
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка инициализации часов: %w", err)
	}
	s.clock.observe(last.CreatedAt)
	return nil
}
