package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"waitlist/internal/models"
	"waitlist/internal/response"
	"waitlist/internal/waitlist"

	"github.com/gin-gonic/gin"
)

// WaitlistHandler - HTTP-обработчики листа ожидания.
type WaitlistHandler struct {
	svc *waitlist.Service
	log *slog.Logger
}

// NewWaitlistHandler создаёт обработчики поверх сервиса.
func NewWaitlistHandler(svc *waitlist.Service, log *slog.Logger) *WaitlistHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WaitlistHandler{svc: svc, log: log}
}

// BulkRequest - тело массового импорта
type BulkRequest struct {
	Entries []waitlist.RegisterInput `json:"entries"`
}

// StatusRequest - тело смены статуса
type StatusRequest struct {
	Status string `json:"status" example:"called"`
}

// ListHandler возвращает записи листа ожидания
// @Summary		Список записей
// @Description	Возвращает все записи или записи одной очереди: сначала ожидающие, затем остальные
// @Tags			waitlist
// @Produce		json
// @Param			list_type	query		string	false	"Очередь или all"
// @Security		BearerAuth
// @Success		200	{object}	response.ListResponse
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/waitlist [get]
func (h *WaitlistHandler) ListHandler(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Query("list_type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	c.JSON(http.StatusOK, response.ListResponse{Message: "success", Data: entries})
}

// RegisterHandler регистрирует участника
// @Summary		Регистрация в очереди
// @Description	Добавляет участника в конец выбранной очереди
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			entry	body		waitlist.RegisterInput	true	"Данные участника"
// @Success		200		{object}	response.CreateResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_LIST_TYPE)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/waitlist [post]
func (h *WaitlistHandler) RegisterHandler(c *gin.Context) {
	var req waitlist.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	entry, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.CreateResponse{Message: "success", Data: entry, ID: entry.ID})
}

// BulkHandler импортирует записи по телефону
// @Summary		Массовый импорт
// @Description	Вставляет новые записи и обновляет существующие по телефону, не меняя их место в очереди
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			body	body		BulkRequest	true	"Строки импорта"
// @Security		BearerAuth
// @Success		200		{object}	response.BulkResponse
// @Failure		400		{object}	response.ErrorResponse	"Пустой список (VALIDATION_ERROR)"
// @Router			/waitlist/bulk [post]
func (h *WaitlistHandler) BulkHandler(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Entries) == 0 {
		body := response.ErrorResponse{Code: "VALIDATION_ERROR", Error: "entries must be a non-empty array"}
		if err != nil {
			body.Details = err.Error()
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	res := h.svc.BulkUpsert(c.Request.Context(), req.Entries)
	c.JSON(http.StatusOK, response.BulkResponse{
		Message:  "success",
		Inserted: res.Inserted,
		Updated:  res.Updated,
		Total:    res.Total(),
		Errors:   res.Errors,
	})
}

// UpdateStatusHandler меняет статус записи
// @Summary		Смена статуса
// @Description	Выставляет статус записи. Для несуществующего id changes = 0
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"ID записи"
// @Param			body	body		StatusRequest	true	"Новый статус"
// @Security		BearerAuth
// @Success		200		{object}	response.UpdateResponse
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (INVALID_ID, INVALID_STATUS)"
// @Router			/waitlist/{id} [put]
func (h *WaitlistHandler) UpdateStatusHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	changes, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.UpdateResponse{Message: "success", Changes: changes})
}

// PostponeHandler переносит участника на одну позицию назад
// @Summary		Перенос на одну позицию
// @Description	Меняет местами участника и следующего ожидающего в той же очереди
// @Tags			waitlist
// @Produce		json
// @Param			id	path		int	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	response.PostponeResponse
// @Failure		400	{object}	response.ErrorResponse	"Участник последний (NO_NEXT_PERSON)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (PERSON_NOT_FOUND)"
// @Router			/waitlist/{id}/postpone [put]
func (h *WaitlistHandler) PostponeHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.svc.Postpone(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.PostponeResponse{
		Message: "success",
		Swapped: true,
		Current: res.Current,
		Next:    res.Next,
	})
}

// StatusByPhoneHandler возвращает позиции участника по телефону
// @Summary		Проверка статуса
// @Description	Возвращает активные записи номера во всех очередях, у каждой - число людей впереди (ahead)
// @Tags			waitlist
// @Produce		json
// @Param			phone	path		string	true	"Телефон"
// @Success		200		{object}	response.StatusResponse
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/waitlist/status/{phone} [get]
func (h *WaitlistHandler) StatusByPhoneHandler(c *gin.Context) {
	phone := c.Param("phone")

	entries, err := h.svc.StatusByPhone(c.Request.Context(), phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusOK, response.StatusResponse{Message: "not_found", Data: []waitlist.RankedEntry{}})
		return
	}
	c.JSON(http.StatusOK, response.StatusResponse{Message: "found", Data: entries, Count: len(entries)})
}

// QueueHandler возвращает упорядоченную очередь для админки
// @Summary		Очередь
// @Description	Очередь по порядку с позициями, посчитанными по всей очереди; поиск на позиции не влияет
// @Tags			waitlist
// @Produce		json
// @Param			list_type		path		string	true	"Очередь"
// @Param			q				query		string	false	"Поиск по имени, телефону, направлению"
// @Param			include_closed	query		bool	false	"Показывать завершённые и отменённые"
// @Security		BearerAuth
// @Success		200	{object}	waitlist.QueueView
// @Failure		400	{object}	response.ErrorResponse	"Нет такой очереди (INVALID_LIST_TYPE)"
// @Router			/waitlist/queue/{list_type} [get]
func (h *WaitlistHandler) QueueHandler(c *gin.Context) {
	includeClosed := true
	if v := c.Query("include_closed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "VALIDATION_ERROR", Error: "include_closed must be a boolean"})
			return
		}
		includeClosed = b
	}

	view, err := h.svc.Queue(c.Request.Context(), waitlist.QueueQuery{
		ListType:      c.Param("list_type"),
		Search:        c.Query("q"),
		IncludeClosed: includeClosed,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// StatsHandler возвращает счётчики по статусам
// @Summary		Статистика
// @Tags			waitlist
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	waitlist.Stats
// @Router			/waitlist/stats [get]
func (h *WaitlistHandler) StatsHandler(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListTypesHandler возвращает доступные очереди
// @Summary		Очереди
// @Tags			waitlist
// @Produce		json
// @Success		200	{object}	map[string][]string
// @Router			/list-types [get]
func (h *WaitlistHandler) ListTypesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": h.svc.ListTypes()})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:  "INVALID_ID",
			Error: "invalid entry id",
		})
		return 0, false
	}
	return uint(id), true
}

// fail переводит ошибку сервиса в HTTP-ответ.
func (h *WaitlistHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, waitlist.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{Code: "PERSON_NOT_FOUND", Error: "Person not found"})
	case errors.Is(err, waitlist.ErrNoNextPerson):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "NO_NEXT_PERSON", Error: "No next person to swap with"})
	case errors.Is(err, waitlist.ErrValidation):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "VALIDATION_ERROR", Error: "validation failed", Details: err.Error()})
	case errors.Is(err, waitlist.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "INVALID_STATUS", Error: "invalid status", Details: err.Error()})
	case errors.Is(err, waitlist.ErrInvalidListType):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "INVALID_LIST_TYPE", Error: "unknown list_type", Details: err.Error()})
	default:
		h.log.Error("ошибка базы данных", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "storage failure",
			Details: err.Error(),
		})
	}
}
