package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/mock"
	"github.com/shelfsync/shelfsync/models"
)

func newRecordAPIService(t *testing.T) (*mock.MockRecordRepository, RecordAPIService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	records := mock.NewMockRecordRepository(ctrl)
	return records, NewRecordAPIService(records, logger.Nop())
}

func TestRecordAPIService_RejectsMissingZone(t *testing.T) {
	_, svc := newRecordAPIService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.EnsureZone(ctx, 1, models.EnsureZoneRequest{}), ErrValidationNoZoneProvided)
	assert.ErrorIs(t, svc.EnsureSubscription(ctx, 1, models.EnsureZoneRequest{DeviceID: "dev-1"}), ErrValidationNoZoneProvided)

	_, err := svc.SaveRecords(ctx, 1, models.SaveRecordsRequest{
		Records: []models.RemoteRecord{{Name: "rec-1"}},
		Length:  1,
	})
	assert.ErrorIs(t, err, ErrValidationNoZoneProvided)

	_, err = svc.FetchChanges(ctx, 1, models.FetchChangesRequest{Type: models.EntityBooks})
	assert.ErrorIs(t, err, ErrValidationNoZoneProvided)
}

func TestRecordAPIService_RejectsEmptyBatches(t *testing.T) {
	_, svc := newRecordAPIService(t)
	ctx := context.Background()

	_, err := svc.SaveRecords(ctx, 1, models.SaveRecordsRequest{Zone: "library"})
	assert.ErrorIs(t, err, ErrValidationNoRecordsProvided)

	err = svc.DeleteRecords(ctx, 1, models.DeleteRecordsRequest{Zone: "library"})
	assert.ErrorIs(t, err, ErrValidationNoRecordsProvided)

	_, err = svc.FetchRecords(ctx, 1, models.FetchRecordsRequest{Zone: "library"})
	assert.ErrorIs(t, err, ErrValidationNoRecordsProvided)
}

func TestRecordAPIService_RejectsLengthMismatch(t *testing.T) {
	_, svc := newRecordAPIService(t)
	ctx := context.Background()

	_, err := svc.SaveRecords(ctx, 1, models.SaveRecordsRequest{
		Zone:    "library",
		Records: []models.RemoteRecord{{Name: "rec-1"}},
		Length:  2,
	})
	assert.ErrorIs(t, err, ErrValidationLengthMismatch)

	err = svc.DeleteRecords(ctx, 1, models.DeleteRecordsRequest{
		Zone:    "library",
		Entries: []models.DeleteEntry{{Type: models.EntityBooks, Name: "rec-1"}},
		Length:  0,
	})
	assert.ErrorIs(t, err, ErrValidationLengthMismatch)
}

func TestRecordAPIService_DelegatesValidRequests(t *testing.T) {
	records, svc := newRecordAPIService(t)
	ctx := context.Background()

	req := models.SaveRecordsRequest{
		Zone:     "library",
		DeviceID: "dev-1",
		Records:  []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1"}},
		Length:   1,
	}
	records.EXPECT().
		SaveRecords(ctx, int64(42), req).
		Return([]models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1", SystemFields: []byte("rev-1")}}, nil)

	saved, err := svc.SaveRecords(ctx, 42, req)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, []byte("rev-1"), saved[0].SystemFields)

	records.EXPECT().EnsureZone(ctx, int64(42), "library").Return(nil)
	require.NoError(t, svc.EnsureZone(ctx, 42, models.EnsureZoneRequest{Zone: "library"}))

	changesReq := models.FetchChangesRequest{Zone: "library", Type: models.EntityShelves, Limit: 50}
	records.EXPECT().
		FetchChanges(ctx, int64(42), changesReq).
		Return(models.RecordChanges{NewToken: models.ChangeToken("t1")}, nil)

	changes, err := svc.FetchChanges(ctx, 42, changesReq)
	require.NoError(t, err)
	assert.Equal(t, models.ChangeToken("t1"), changes.NewToken)
}
