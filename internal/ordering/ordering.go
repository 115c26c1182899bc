// Package ordering вычисляет порядок записей внутри очереди (list_type) и их ранги.
//
// Порядок задаётся ключом created_at по возрастанию, при равенстве - id по возрастанию.
// Ранги пересчитываются на каждый запрос из текущего состояния хранилища.
package ordering

import (
	"sort"

	"waitlist/internal/models"
)

// Less сообщает, стоит ли a в очереди раньше b.
func Less(a, b models.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Sort упорядочивает записи на месте.
func Sort(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return Less(entries[i], entries[j]) })
}

// RankOf возвращает число записей из той же очереди со статусом из active,
// которые стоят раньше entry. Это нулевой номер entry среди активных.
func RankOf(entries []models.Entry, entry models.Entry, active []string) int {
	set := statusSet(active)
	rank := 0
	for _, e := range entries {
		if e.ID == entry.ID || e.ListType != entry.ListType {
			continue
		}
		if _, ok := set[e.Status]; !ok {
			continue
		}
		if Less(e, entry) {
			rank++
		}
	}
	return rank
}

// OrderedView возвращает записи очереди listType, отсортированные по ключу.
func OrderedView(entries []models.Entry, listType string) []models.Entry {
	view := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ListType == listType {
			view = append(view, e)
		}
	}
	Sort(view)
	return view
}

// Positions - номер (с единицы) каждой записи в полной очереди listType.
// Считается по нефильтрованной очереди, поэтому фильтрация для показа
// номера не меняет.
func Positions(entries []models.Entry, listType string) map[uint]int {
	view := OrderedView(entries, listType)
	pos := make(map[uint]int, len(view))
	for i, e := range view {
		pos[e.ID] = i + 1
	}
	return pos
}

// NextWaiting ищет ближайшую запись со статусом waiting из той же очереди,
// у которой created_at строго больше, чем у current.
func NextWaiting(entries []models.Entry, current models.Entry) (models.Entry, bool) {
	var (
		next  models.Entry
		found bool
	)
	for _, e := range entries {
		if e.ID == current.ID || e.ListType != current.ListType || e.Status != models.StatusWaiting {
			continue
		}
		if !e.CreatedAt.After(current.CreatedAt) {
			continue
		}
		if !found || Less(e, next) {
			next = e
			found = true
		}
	}
	return next, found
}

func statusSet(statuses []string) map[string]struct{} {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}
