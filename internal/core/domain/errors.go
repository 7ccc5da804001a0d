package domain

import (
	"errors"
)

var (
	// Длительность не кратна базовой длительности слота
	ErrInvalidDuration = errors.New("duration is not a multiple of the base slot duration")

	// Тип встречи не найден по внешнему номеру
	ErrMeetingTypeNotFound = errors.New("meeting type not found")

	// Идентификатор занятия не распарсился или ссылается на несуществующие слоты
	ErrInvalidOccasion = errors.New("invalid occasion id")

	// Хотя бы один слот занят подтвержденным или непротухшим зарезервированным бронированием
	ErrOccasionNotFree = errors.New("occasion is not free")

	// Бронирование или партнер не найдены
	ErrNotFound = errors.New("not found")

	// Не хватает обязательных параметров запроса
	ErrInvalidRequest = errors.New("invalid request")

	// Перенос бронирования на другое время пока не реализован
	ErrRescheduleNotImplemented = errors.New("reschedule not implemented")
)
