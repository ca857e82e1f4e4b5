package service

import (
	"context"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/models"
)

// recordAPIService validates record requests and delegates to the store.
type recordAPIService struct {
	records store.RecordRepository
	logger  *logger.Logger
}

// NewRecordAPIService returns the record API backed by the given repository.
func NewRecordAPIService(records store.RecordRepository, logger *logger.Logger) RecordAPIService {
	return &recordAPIService{records: records, logger: logger}
}

func (r *recordAPIService) EnsureZone(ctx context.Context, accountID int64, req models.EnsureZoneRequest) error {
	if req.Zone == "" {
		return ErrValidationNoZoneProvided
	}
	if err := r.records.EnsureZone(ctx, accountID, req.Zone); err != nil {
		return fmt.Errorf("ensure zone: %w", err)
	}
	return nil
}

func (r *recordAPIService) EnsureSubscription(ctx context.Context, accountID int64, req models.EnsureZoneRequest) error {
	if req.Zone == "" {
		return ErrValidationNoZoneProvided
	}
	if err := r.records.EnsureSubscription(ctx, accountID, req.Zone, req.DeviceID); err != nil {
		return fmt.Errorf("ensure subscription: %w", err)
	}
	return nil
}

func (r *recordAPIService) SaveRecords(ctx context.Context, accountID int64, req models.SaveRecordsRequest) ([]models.RemoteRecord, error) {
	if req.Zone == "" {
		return nil, ErrValidationNoZoneProvided
	}
	if len(req.Records) == 0 {
		return nil, ErrValidationNoRecordsProvided
	}
	if req.Length != len(req.Records) {
		return nil, ErrValidationLengthMismatch
	}

	saved, err := r.records.SaveRecords(ctx, accountID, req)
	if err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	return saved, nil
}

func (r *recordAPIService) DeleteRecords(ctx context.Context, accountID int64, req models.DeleteRecordsRequest) error {
	if req.Zone == "" {
		return ErrValidationNoZoneProvided
	}
	if len(req.Entries) == 0 {
		return ErrValidationNoRecordsProvided
	}
	if req.Length != len(req.Entries) {
		return ErrValidationLengthMismatch
	}

	if err := r.records.DeleteRecords(ctx, accountID, req); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func (r *recordAPIService) FetchRecords(ctx context.Context, accountID int64, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error) {
	if req.Zone == "" {
		return models.FetchRecordsResponse{}, ErrValidationNoZoneProvided
	}
	if len(req.Names) == 0 {
		return models.FetchRecordsResponse{}, ErrValidationNoRecordsProvided
	}
	if req.Length != len(req.Names) {
		return models.FetchRecordsResponse{}, ErrValidationLengthMismatch
	}

	resp, err := r.records.FetchRecords(ctx, accountID, req)
	if err != nil {
		return models.FetchRecordsResponse{}, fmt.Errorf("fetch records: %w", err)
	}
	return resp, nil
}

func (r *recordAPIService) FetchChanges(ctx context.Context, accountID int64, req models.FetchChangesRequest) (models.RecordChanges, error) {
	if req.Zone == "" {
		return models.RecordChanges{}, ErrValidationNoZoneProvided
	}

	changes, err := r.records.FetchChanges(ctx, accountID, req)
	if err != nil {
		return models.RecordChanges{}, fmt.Errorf("fetch changes: %w", err)
	}
	return changes, nil
}
