package waitlist

import (
	"context"
	"strings"

	"waitlist/internal/models"
	"waitlist/internal/ordering"
	"waitlist/internal/storage"
)

// QueueQuery - параметры просмотра одной очереди в админке.
type QueueQuery struct {
	ListType      string
	Search        string
	IncludeClosed bool
}

// QueueRow - строка очереди. Position считается по всей очереди (с единицы),
// Ahead есть только у активных записей.
type QueueRow struct {
	models.Entry
	Position int  `json:"position"`
	Ahead    *int `json:"ahead,omitempty"`
}

// QueueView - очередь для админки.
type QueueView struct {
	ListType string     `json:"list_type"`
	Total    int        `json:"total"`
	Waiting  int        `json:"waiting"`
	Rows     []QueueRow `json:"rows"`
}

// Queue строит упорядоченный вид очереди. Поиск и скрытие завершённых
// применяются после расчёта позиций и на номера не влияют.
func (s *Service) Queue(ctx context.Context, q QueueQuery) (QueueView, error) {
	listType, err := s.resolveListType(strings.TrimSpace(q.ListType))
	if err != nil {
		return QueueView{}, err
	}

	all, err := s.store.List(ctx, storage.Filter{ListType: listType})
	if err != nil {
		return QueueView{}, err
	}

	view := ordering.OrderedView(all, listType)
	positions := ordering.Positions(all, listType)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := QueueView{ListType: listType, Total: len(view), Rows: []QueueRow{}}
	active := 0
	for _, e := range view {
		row := QueueRow{Entry: e, Position: positions[e.ID]}
		if models.IsActive(e.Status) {
			ahead := active
			row.Ahead = &ahead
			active++
		}

		if !q.IncludeClosed && (e.Status == models.StatusCompleted || e.Status == models.StatusCancelled) {
			continue
		}
		if search != "" && !matches(e, search) {
			continue
		}
		if e.Status == models.StatusWaiting {
			out.Waiting++
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func matches(e models.Entry, search string) bool {
	return strings.Contains(strings.ToLower(e.Name), search) ||
		strings.Contains(e.Phone, search) ||
		strings.Contains(strings.ToLower(e.JobGroup), search)
}

// Stats - счётчики для шапки админки.
type Stats struct {
	Total    int64                       `json:"total"`
	ByStatus map[string]int64            `json:"by_status"`
	ByList   map[string]map[string]int64 `json:"by_list"`
}

// Stats считает записи по статусам, всего и по каждой очереди.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		ByStatus: make(map[string]int64),
		ByList:   make(map[string]map[string]int64),
	}
	for _, lt := range s.listTypes {
		st.ByList[lt] = make(map[string]int64)
	}
	for _, c := range counts {
		st.Total += c.Count
		st.ByStatus[c.Status] += c.Count
		if st.ByList[c.ListType] == nil {
			st.ByList[c.ListType] = make(map[string]int64)
		}
		st.ByList[c.ListType][c.Status] += c.Count
	}
	return st, nil
}
