package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/in"
)

func TestSearchAppointmentsEmptyFilter(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.SearchAppointments(context.Background(), in.AppointmentSearchFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSearchAppointmentsResolvesFilters(t *testing.T) {
	slotStore := &fakeSlotStore{
		types: []domain.MeetingType{{ID: 1, IpfNum: 10, Name: "Inskrivning", Channel: "SPD"}},
	}
	apptStore := newFakeApptStore()
	partners := &fakePartnerStore{
		partners: []domain.Partner{{ID: 5, Name: "jobseeker", CustomerNr: "C1", Pnr: "19900101-1234"}},
	}
	svc := newTestService(slotStore, apptStore, partners, nil)

	_, err := svc.SearchAppointments(context.Background(), in.AppointmentSearchFilter{
		UserName:   "sunea",
		CustomerNr: "C1",
		TypeIpfs:   []int64{10},
		States:     []string{"confirmed"},
	})
	require.NoError(t, err)

	assert.Equal(t, "sunea", apptStore.lastFilter.UserName)
	assert.Equal(t, int64(5), apptStore.lastFilter.PartnerID)
	assert.Equal(t, []int64{1}, apptStore.lastFilter.TypeIDs)
	assert.Equal(t, []domain.AppointmentState{domain.AppointmentStateConfirmed}, apptStore.lastFilter.States)
}

func TestSearchAppointmentsUnknownCustomer(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.SearchAppointments(context.Background(), in.AppointmentSearchFilter{CustomerNr: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchAppointmentsUnknownMeetingType(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.SearchAppointments(context.Background(), in.AppointmentSearchFilter{TypeIpfs: []int64{99}})
	assert.ErrorIs(t, err, domain.ErrMeetingTypeNotFound)
}

func TestBookAppointmentRequiresCustomer(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.BookAppointment(context.Background(), "1-2", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestBookAppointment(t *testing.T) {
	slotStore := &fakeSlotStore{
		types: []domain.MeetingType{{ID: 1, IpfNum: 10, Name: "Inskrivning", Channel: "SPD"}},
		slots: contiguousSlots(2, day, 1, "SPD"),
	}
	apptStore := newFakeApptStore()
	partners := &fakePartnerStore{
		partners: []domain.Partner{
			{ID: 5, Name: "jobseeker", DisplayName: "Test Person", CustomerNr: "C1"},
			{ID: 6, Name: "sunea", DisplayName: "Handläggare", Phone: "010-123"},
		},
	}
	svc := newTestService(slotStore, apptStore, partners, nil)

	detail, err := svc.BookAppointment(context.Background(), "1-2", "C1", "")
	require.NoError(t, err)

	// Имя берется из типа встречи, а не из автособранного заголовка
	assert.Equal(t, "Inskrivning", detail.Appointment.Name)
	assert.Equal(t, domain.AppointmentStateConfirmed, detail.Appointment.State)
	assert.Equal(t, int64(5), detail.Appointment.PartnerID)
	assert.Equal(t, "sunea", detail.Appointment.UserName)

	require.NotNil(t, detail.Partner)
	assert.Equal(t, "Test Person", detail.Partner.DisplayName)
	require.NotNil(t, detail.Employee)
	assert.Equal(t, "Handläggare", detail.Employee.DisplayName)
	require.NotNil(t, detail.MeetingType)
	assert.Equal(t, int64(10), detail.MeetingType.IpfNum)
}

func TestBookAppointmentPnrWinsOverCustomerNr(t *testing.T) {
	slotStore := &fakeSlotStore{
		types: []domain.MeetingType{{ID: 1, IpfNum: 10, Name: "Inskrivning", Channel: "SPD"}},
		slots: contiguousSlots(2, day, 1, "SPD"),
	}
	partners := &fakePartnerStore{
		partners: []domain.Partner{
			{ID: 5, CustomerNr: "C1"},
			{ID: 7, Pnr: "19900101-1234"},
		},
	}
	svc := newTestService(slotStore, newFakeApptStore(), partners, nil)

	detail, err := svc.BookAppointment(context.Background(), "1-2", "C1", "19900101-1234")
	require.NoError(t, err)
	assert.Equal(t, int64(7), detail.Appointment.PartnerID)
}

func TestBookAppointmentUnknownCustomer(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.BookAppointment(context.Background(), "1-2", "nope", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAppointmentInvalidID(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	assert.ErrorIs(t, svc.DeleteAppointment(context.Background(), 0), domain.ErrInvalidRequest)
	assert.ErrorIs(t, svc.DeleteAppointment(context.Background(), 42), domain.ErrNotFound)
}

func TestUpdateAppointmentEmpty(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.UpdateAppointment(context.Background(), 1, domain.AppointmentUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestUpdateAppointmentResolvesReferences(t *testing.T) {
	slotStore := &fakeSlotStore{
		types: []domain.MeetingType{{ID: 2, IpfNum: 20, Name: "Uppföljning", Channel: "TFN"}},
		slots: contiguousSlots(2, day, 1, "SPD"),
	}
	apptStore := newFakeApptStore()
	partners := &fakePartnerStore{
		partners: []domain.Partner{{ID: 5, CustomerNr: "C1"}},
	}
	svc := newTestService(slotStore, apptStore, partners, nil)

	reserved, err := svc.ReserveOccasion(context.Background(), "1-2")
	require.NoError(t, err)

	title := "Nytt möte"
	customerNr := "C1"
	typeIpf := int64(20)
	detail, err := svc.UpdateAppointment(context.Background(), reserved.ID, domain.AppointmentUpdate{
		Title:      &title,
		CustomerNr: &customerNr,
		TypeIpfNum: &typeIpf,
	})
	require.NoError(t, err)

	require.NotNil(t, apptStore.lastPatch.PartnerID)
	assert.Equal(t, int64(5), *apptStore.lastPatch.PartnerID)
	require.NotNil(t, apptStore.lastPatch.TypeID)
	assert.Equal(t, int64(2), *apptStore.lastPatch.TypeID)
	require.NotNil(t, apptStore.lastPatch.Channel)
	assert.Equal(t, "TFN", *apptStore.lastPatch.Channel)

	assert.Equal(t, "Nytt möte", detail.Appointment.Name)
	assert.Equal(t, "TFN", detail.Appointment.Channel)
}

func TestUpdateAppointmentUnknownCustomer(t *testing.T) {
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), &fakePartnerStore{}, nil)

	customerNr := "nope"
	_, err := svc.UpdateAppointment(context.Background(), 1, domain.AppointmentUpdate{CustomerNr: &customerNr})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleJobseekerIDChange(t *testing.T) {
	partners := &fakePartnerStore{}
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), partners, nil)

	err := svc.HandleJobseekerIDChange(context.Background(), "C1", "19900101-5678")
	require.NoError(t, err)
	assert.Equal(t, "19900101-5678", partners.pnrUpdates["C1"])
}

func TestHandleJobseekerIDChangeUnknownCustomer(t *testing.T) {
	partners := &fakePartnerStore{updateErr: domain.ErrNotFound}
	svc := newTestService(&fakeSlotStore{}, newFakeApptStore(), partners, nil)

	// Неизвестный клиент не ошибка, сообщение пропускается
	assert.NoError(t, svc.HandleJobseekerIDChange(context.Background(), "nope", "19900101-5678"))
}
