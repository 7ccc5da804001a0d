package domain

import (
	"time"
)

type AppointmentState string

const (
	AppointmentStateReserved  AppointmentState = "reserved"
	AppointmentStateConfirmed AppointmentState = "confirmed"
	AppointmentStateCancelled AppointmentState = "cancelled"
)

// Appointment - бронирование, занимающее один или несколько слотов.
// В состоянии reserved слоты блокируются только до истечения таймаута резервации,
// после этого резервация считается протухшей и слоты можно занимать заново
type Appointment struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Start           time.Time        `json:"start"`
	Stop            time.Time        `json:"stop"`
	DurationMinutes int              `json:"durationMinutes"`
	PartnerID       int64            `json:"partnerId"`
	UserName        string           `json:"userName"`
	TypeID          int64            `json:"typeId"`
	Channel         string           `json:"channel"`
	State           AppointmentState `json:"state"`
	ReservedAt      time.Time        `json:"reservedAt"`
	SlotIDs         []int64          `json:"slotIds"`
}

// AppointmentFilter - явный набор фильтров для поиска бронирований
type AppointmentFilter struct {
	UserName  string
	PartnerID int64
	TypeIDs   []int64
	States    []AppointmentState
	StartFrom *time.Time
	StopUntil *time.Time
}

// Empty возвращает true, если не задан ни один фильтр
func (f AppointmentFilter) Empty() bool {
	return f.UserName == "" &&
		f.PartnerID == 0 &&
		len(f.TypeIDs) == 0 &&
		len(f.States) == 0 &&
		f.StartFrom == nil &&
		f.StopUntil == nil
}

// AppointmentUpdate - закрытый набор обновляемых полей бронирования.
// Перенос на другое время (occasion/start/stop/duration) не входит сюда,
// это отдельная нереализованная операция
type AppointmentUpdate struct {
	Title      *string
	UserName   *string
	CustomerNr *string
	TypeIpfNum *int64
}

func (u AppointmentUpdate) Empty() bool {
	return u.Title == nil && u.UserName == nil && u.CustomerNr == nil && u.TypeIpfNum == nil
}

// AppointmentPatch - то же обновление после резолва справочников,
// в том виде, в котором его применяет хранилище
type AppointmentPatch struct {
	Title     *string
	UserName  *string
	PartnerID *int64
	TypeID    *int64
	Channel   *string
}

// AppointmentDetails - бронирование вместе со связанными справочными данными,
// нужными для ответа наружу
type AppointmentDetails struct {
	Appointment Appointment
	Partner     *Partner
	Employee    *Partner
	MeetingType *MeetingType
}
