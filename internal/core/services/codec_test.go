package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertel/af-booking-service/internal/core/domain"
)

func TestEncodeOccasionID(t *testing.T) {
	slots := []domain.Slot{{ID: 12}, {ID: 13}, {ID: 14}}
	assert.Equal(t, "12-13-14", EncodeOccasionID(slots))

	assert.Equal(t, "7", EncodeOccasionID([]domain.Slot{{ID: 7}}))
}

func TestDecodeOccasionID(t *testing.T) {
	slotStore := &fakeSlotStore{
		slots: contiguousSlots(3, day, 1, "SPD"),
	}
	svc := newTestService(slotStore, newFakeApptStore(), &fakePartnerStore{}, nil)

	slots, err := svc.DecodeOccasionID(context.Background(), "1-2-3")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, int64(1), slots[0].ID)
	assert.Equal(t, int64(3), slots[2].ID)

	// Порядок идентификаторов сохраняется
	slots, err = svc.DecodeOccasionID(context.Background(), "3-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), slots[0].ID)
	assert.Equal(t, int64(1), slots[1].ID)
}

func TestDecodeOccasionIDInvalid(t *testing.T) {
	slotStore := &fakeSlotStore{
		slots: contiguousSlots(2, day, 1, "SPD"),
	}
	svc := newTestService(slotStore, newFakeApptStore(), &fakePartnerStore{}, nil)

	_, err := svc.DecodeOccasionID(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidOccasion)

	_, err = svc.DecodeOccasionID(context.Background(), "1-abc")
	assert.ErrorIs(t, err, domain.ErrInvalidOccasion)

	// Исчезнувший слот делает весь идентификатор невалидным
	_, err = svc.DecodeOccasionID(context.Background(), "1-2-99")
	assert.ErrorIs(t, err, domain.ErrInvalidOccasion)
}
