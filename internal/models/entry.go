package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Статусы записи в листе ожидания
const (
	StatusWaiting    = "waiting"
	StatusCalled     = "called"
	StatusOnsite     = "onsite"
	StatusAbsent     = "absent"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusConsulting = "consulting"
)

// AdminStatuses - статусы, которые может выставить администратор.
var AdminStatuses = []string{
	StatusWaiting,
	StatusCalled,
	StatusOnsite,
	StatusAbsent,
	StatusCompleted,
	StatusCancelled,
}

// ActiveStatuses - статусы, которые занимают место в очереди при проверке статуса.
// consulting здесь есть, но выставить его через API нельзя.
var ActiveStatuses = []string{
	StatusWaiting,
	StatusCalled,
	StatusOnsite,
	StatusAbsent,
	StatusConsulting,
}

// Entry - запись одного участника в одной из очередей.
// CreatedAt служит ключом сортировки внутри ListType и меняется операцией postpone,
// поэтому реальным временем регистрации не является.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	JobGroup  string    `json:"job_group"`
	Years     Years     `json:"years"`
	Phone     string    `gorm:"index" json:"phone"`
	ListType  string    `gorm:"index" json:"list_type"`
	Status    string    `gorm:"index;default:waiting" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Entry) TableName() string { return "waiting_list" }

// IsAdminStatus сообщает, можно ли выставить статус через API.
func IsAdminStatus(status string) bool {
	return contains(AdminStatuses, status)
}

// IsActive сообщает, занимает ли статус место в очереди.
func IsActive(status string) bool {
	return contains(ActiveStatuses, status)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Years - стаж в годах. Формы клиента присылают строку, импорт из Excel - число,
// поэтому при разборе принимаются оба варианта, пустая строка и null дают 0.
// Дробные, отрицательные и слишком большие значения отклоняются.
type Years int

// MaxYears - верхняя граница стажа.
const MaxYears = 100

func (y *Years) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*y = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("years: %q не число", s)
		}
		return y.set(float64(n), s)
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("years: %w", err)
	}
	return y.set(f, string(data))
}

func (y *Years) set(f float64, raw string) error {
	if f != math.Trunc(f) {
		return fmt.Errorf("years: %s не целое число", raw)
	}
	if f < 0 || f > MaxYears {
		return fmt.Errorf("years: %s вне диапазона 0..%d", raw, MaxYears)
	}
	*y = Years(f)
	return nil
}
