package services

import (
	"context"
	"time"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields) {}
func (nopLogger) Info(string, out.LogFields) {}
func (nopLogger) Warn(string, out.LogFields) {}
func (nopLogger) Error(string, out.LogFields) {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort { return l }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Booking.SlotDurationMinutes = 30
	cfg.Booking.ReservationTimeoutSeconds = 300
	cfg.Booking.DefaultEmployee = "sunea"
	cfg.Booking.DefaultOfficeCode = "0248"
	return cfg
}

// fakeSlotStore - слоты и типы встреч в памяти
type fakeSlotStore struct {
	types []domain.MeetingType
	free  []domain.Slot
	slots []domain.Slot

	lastChannel string
}

func (f *fakeSlotStore) GetMeetingTypeByID(_ context.Context, id int64) (*domain.MeetingType, error) {
	for _, mt := range f.types {
		if mt.ID == id {
			t := mt
			return &t, nil
		}
	}
	return nil, domain.ErrMeetingTypeNotFound
}

func (f *fakeSlotStore) GetMeetingTypeByIpfNum(_ context.Context, ipfNum int64) (*domain.MeetingType, error) {
	for _, mt := range f.types {
		if mt.IpfNum == ipfNum {
			t := mt
			return &t, nil
		}
	}
	return nil, domain.ErrMeetingTypeNotFound
}

func (f *fakeSlotStore) GetMeetingTypesByIpfNums(_ context.Context, ipfNums []int64) ([]domain.MeetingType, error) {
	var found []domain.MeetingType
	for _, num := range ipfNums {
		for _, mt := range f.types {
			if mt.IpfNum == num {
				found = append(found, mt)
			}
		}
	}
	return found, nil
}

func (f *fakeSlotStore) GetFreeSlots(_ context.Context, _ int64, channel string, _, _, _ time.Time) ([]domain.Slot, error) {
	f.lastChannel = channel
	return f.free, nil
}

func (f *fakeSlotStore) GetSlotsByIDs(_ context.Context, ids []int64) ([]domain.Slot, error) {
	byID := make(map[int64]domain.Slot, len(f.slots))
	for _, slot := range f.slots {
		byID[slot.ID] = slot
	}

	ordered := make([]domain.Slot, 0, len(ids))
	for _, id := range ids {
		slot, ok := byID[id]
		if !ok {
			return nil, domain.ErrInvalidOccasion
		}
		ordered = append(ordered, slot)
	}
	return ordered, nil
}

// fakeApptStore записывает вызовы и хранит бронирования в памяти
type fakeApptStore struct {
	reserveErr error
	bookErr    error

	nextID   int64
	appts    map[int64]domain.Appointment
	released [][]int64

	lastFilter domain.AppointmentFilter
	lastPatch  domain.AppointmentPatch
	searchOut  []domain.Appointment
}

func newFakeApptStore() *fakeApptStore {
	return &fakeApptStore{appts: make(map[int64]domain.Appointment)}
}

func (f *fakeApptStore) Reserve(_ context.Context, slotIDs []int64, appt domain.Appointment, _ time.Time) (*domain.Appointment, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	f.nextID++
	appt.ID = f.nextID
	appt.SlotIDs = slotIDs
	f.appts[appt.ID] = appt
	return &appt, nil
}

func (f *fakeApptStore) Book(_ context.Context, slotIDs []int64, appt domain.Appointment, _ time.Time) (*domain.Appointment, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.nextID++
	appt.ID = f.nextID
	appt.SlotIDs = slotIDs
	f.appts[appt.ID] = appt
	return &appt, nil
}

func (f *fakeApptStore) Confirm(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	appt.State = domain.AppointmentStateConfirmed
	f.appts[id] = appt
	return &appt, nil
}

func (f *fakeApptStore) ReleaseSlots(_ context.Context, slotIDs []int64) error {
	f.released = append(f.released, slotIDs)
	return nil
}

func (f *fakeApptStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.appts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeApptStore) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &appt, nil
}

func (f *fakeApptStore) Search(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	f.lastFilter = filter
	return f.searchOut, nil
}

func (f *fakeApptStore) Update(_ context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	f.lastPatch = patch
	appt, ok := f.appts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		appt.Name = *patch.Title
	}
	if patch.UserName != nil {
		appt.UserName = *patch.UserName
	}
	if patch.PartnerID != nil {
		appt.PartnerID = *patch.PartnerID
	}
	if patch.TypeID != nil {
		appt.TypeID = *patch.TypeID
	}
	if patch.Channel != nil {
		appt.Channel = *patch.Channel
	}
	f.appts[id] = appt
	return &appt, nil
}

// fakePartnerStore - справочник партнеров в памяти
type fakePartnerStore struct {
	partners []domain.Partner

	pnrUpdates map[string]string
	updateErr  error
}

func (f *fakePartnerStore) find(match func(domain.Partner) bool) (*domain.Partner, error) {
	for _, p := range f.partners {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePartnerStore) GetPartnerByID(_ context.Context, id int64) (*domain.Partner, error) {
	return f.find(func(p domain.Partner) bool { return p.ID == id })
}

func (f *fakePartnerStore) GetPartnerByCustomerNr(_ context.Context, customerNr string) (*domain.Partner, error) {
	return f.find(func(p domain.Partner) bool { return p.CustomerNr == customerNr })
}

func (f *fakePartnerStore) GetPartnerByPnr(_ context.Context, pnr string) (*domain.Partner, error) {
	return f.find(func(p domain.Partner) bool { return p.Pnr == pnr })
}

func (f *fakePartnerStore) GetPartnerByName(_ context.Context, name string) (*domain.Partner, error) {
	return f.find(func(p domain.Partner) bool { return p.Name == name })
}

func (f *fakePartnerStore) UpdatePartnerPnr(_ context.Context, customerNr, pnr string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.pnrUpdates == nil {
		f.pnrUpdates = make(map[string]string)
	}
	f.pnrUpdates[customerNr] = pnr
	return nil
}

// fakeEdiPort записывает опубликованные события
type fakeEdiPort struct {
	events []out.EdiEvent
}

func (f *fakeEdiPort) PublishAppointmentEvent(_ context.Context, event out.EdiEvent, _ domain.Appointment, _ *domain.Partner) error {
	f.events = append(f.events, event)
	return nil
}

func newTestService(slotStore *fakeSlotStore, apptStore *fakeApptStore, partners *fakePartnerStore, edi *fakeEdiPort) *BookingService {
	var ediPort out.EdiPort
	if edi != nil {
		ediPort = edi
	}
	return NewBookingService(slotStore, apptStore, partners, nil, ediPort, testConfig(), nopLogger{})
}

// mkSlot строит слот базовой длительности от заданного момента
func mkSlot(id int64, start time.Time, typeID int64, channel string) domain.Slot {
	return domain.Slot{
		ID:      id,
		Start:   start,
		Stop:    start.Add(30 * time.Minute),
		TypeID:  typeID,
		Channel: channel,
	}
}
