package utils

import (
	"fmt"
	"time"

	"github.com/vertel/af-booking-service/internal/config"
)

// Формат таймстемпов интеграций: наивное время с литеральным Z.
// Интеграции присылают его в референсной таймзоне, наружу отдаем UTC
const WireDateTimeFormat = "2006-01-02T15:04:05Z"

// StartCurrentDay возвращает начало суток для даты в ее таймзоне
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartNextDay возвращает начало следующих суток, таймзона остается прежней
func StartNextDay(t time.Time) time.Time {
	newDate := t.AddDate(0, 0, 1)
	return time.Date(newDate.Year(), newDate.Month(), newDate.Day(), 0, 0, 0, 0, newDate.Location())
}

// ParseWireDateTime парсит таймстемп интеграции: строка вида 2006-01-02T15:04:05Z
// интерпретируется в референсной таймзоне и конвертируется в UTC
func ParseWireDateTime(str string) (time.Time, error) {
	parsed, err := time.ParseInLocation(WireDateTimeFormat, str, config.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time: %v", err)
	}

	return parsed.UTC(), nil
}

// FormatWireDateTime форматирует момент времени для ответа: UTC с суффиксом Z
func FormatWireDateTime(t time.Time) string {
	return t.UTC().Format(WireDateTimeFormat)
}
