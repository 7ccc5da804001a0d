package domain

// MeetingType - конфигурация типа встречи.
// IpfNum - внешний номер типа, под которым его знают интеграции
type MeetingType struct {
	ID      int64  `json:"id"`
	IpfNum  int64  `json:"ipfNum"`
	Name    string `json:"name"`
	Channel string `json:"channel"`
}
