package waitlist

import "errors"

var (
	// ErrValidation - не заполнены обязательные поля.
	ErrValidation = errors.New("ошибка валидации")
	// ErrPersonNotFound - записи с таким id нет.
	ErrPersonNotFound = errors.New("запись не найдена")
	// ErrNoNextPerson - запись последняя среди ожидающих, переносить некуда.
	ErrNoNextPerson = errors.New("нет следующего участника для обмена")
	// ErrInvalidStatus - статус нельзя выставить через API.
	ErrInvalidStatus = errors.New("недопустимый статус")
	// ErrInvalidListType - такой очереди нет.
	ErrInvalidListType = errors.New("неизвестная очередь")
)
