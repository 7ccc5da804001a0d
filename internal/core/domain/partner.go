package domain

// Partner - клиент (соискатель) или сотрудник из справочника партнеров.
// CustomerNr - внешний номер клиента, Pnr - национальный идентификатор
type Partner struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	CustomerNr  string `json:"customerNr"`
	Pnr         string `json:"pnr"`
}
