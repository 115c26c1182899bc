package response

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Человекочитаемое сообщение об ошибке. Клиент показывает именно его.
	// example: No next person to swap with
	Error string `json:"error"`

	// Код ошибки для программной обработки
	// example: NO_NEXT_PERSON
	Code string `json:"code,omitempty"`

	// Дополнительные детали об ошибке (опционально)
	Details string `json:"details,omitempty"`
}

// ListResponse - список записей
type ListResponse struct {
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data"`
}

// CreateResponse - результат регистрации
type CreateResponse struct {
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data"`
	ID      uint        `json:"id" example:"42"`
}

// BulkResponse - итог массового импорта
type BulkResponse struct {
	Message  string      `json:"message" example:"success"`
	Inserted int         `json:"inserted"`
	Updated  int         `json:"updated"`
	Total    int         `json:"total"`
	Errors   interface{} `json:"errors"`
}

// UpdateResponse - результат смены статуса
type UpdateResponse struct {
	Message string `json:"message" example:"success"`
	Changes int64  `json:"changes" example:"1"`
}

// PostponeResponse - результат переноса на одну позицию
type PostponeResponse struct {
	Message string      `json:"message" example:"success"`
	Swapped bool        `json:"swapped" example:"true"`
	Current interface{} `json:"current"`
	Next    interface{} `json:"next"`
}

// StatusResponse - результат проверки статуса по телефону
type StatusResponse struct {
	Message string      `json:"message" example:"found"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

// TokenResponse представляет ответ с токеном администратора
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}
