package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/airtable"
	"github.com/maheshrc27/contentflow/internal/models"
)

// Column names in the Retry Queue table.
const (
	retryFieldOperation = "Operation"
	retryFieldRecordID  = "Record ID"
	retryFieldDetails   = "Details"
	retryFieldStatus    = "Status"
	retryFieldCreated   = "Created"
)

type RetryRepository interface {
	GetByID(ctx context.Context, id string) (*models.RetryRecord, error)
	List(ctx context.Context) ([]*models.RetryRecord, error)
	ListPending(ctx context.Context) ([]*models.RetryRecord, error)
	// Upsert records a failed operation. If a Pending record for the same
	// (operation, target) pair already exists its details are refreshed;
	// otherwise a new Pending record is created. At most one Pending record
	// per pair can exist as a result.
	Upsert(ctx context.Context, operation, recordID, details string) error
	Resolve(ctx context.Context, id, status string) error
	// Requeue flips a Failed record back to Pending for another automated
	// attempt. Manual follow-up path; Pending and Completed records are
	// left alone.
	Requeue(ctx context.Context, id string) error
}

type retryRepository struct {
	client *airtable.Client
	table  string
	now    func() time.Time
}

func NewRetryRepository(client *airtable.Client, cfg config.Airtable) RetryRepository {
	return &retryRepository{
		client: client,
		table:  cfg.RetryTable,
		now:    time.Now,
	}
}

func (r *retryRepository) GetByID(ctx context.Context, id string) (*models.RetryRecord, error) {
	formula := fmt.Sprintf("RECORD_ID() = '%s'", escapeFormulaValue(id))
	records, err := r.client.List(ctx, r.table, formula)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return toRetryRecord(records[0]), nil
}

func (r *retryRepository) List(ctx context.Context) ([]*models.RetryRecord, error) {
	records, err := r.client.List(ctx, r.table, "")
	if err != nil {
		return nil, err
	}

	items := make([]*models.RetryRecord, 0, len(records))
	for _, record := range records {
		items = append(items, toRetryRecord(record))
	}
	return items, nil
}

func (r *retryRepository) ListPending(ctx context.Context) ([]*models.RetryRecord, error) {
	formula := fmt.Sprintf("{%s} = '%s'", retryFieldStatus, models.RetryStatusPending)
	records, err := r.client.List(ctx, r.table, formula)
	if err != nil {
		return nil, err
	}

	items := make([]*models.RetryRecord, 0, len(records))
	for _, record := range records {
		items = append(items, toRetryRecord(record))
	}
	return items, nil
}

func (r *retryRepository) Upsert(ctx context.Context, operation, recordID, details string) error {
	existing, err := r.findPending(ctx, operation, recordID)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = r.client.Update(ctx, r.table, existing.ID, map[string]any{
			retryFieldDetails: details,
		})
		return err
	}

	_, err = r.client.Create(ctx, r.table, map[string]any{
		retryFieldOperation: operation,
		retryFieldRecordID:  recordID,
		retryFieldDetails:   details,
		retryFieldStatus:    models.RetryStatusPending,
		retryFieldCreated:   r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	slog.Info("added operation to retry queue", "operation", operation, "record", recordID)
	return nil
}

func (r *retryRepository) Resolve(ctx context.Context, id, status string) error {
	_, err := r.client.Update(ctx, r.table, id, map[string]any{
		retryFieldStatus: status,
	})
	return err
}

func (r *retryRepository) Requeue(ctx context.Context, id string) error {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("retry record %s not found", id)
	}
	if record.Status != models.RetryStatusFailed {
		return fmt.Errorf("retry record %s is %s, only Failed records can be requeued", id, record.Status)
	}

	_, err = r.client.Update(ctx, r.table, id, map[string]any{
		retryFieldStatus: models.RetryStatusPending,
	})
	return err
}

func (r *retryRepository) findPending(ctx context.Context, operation, recordID string) (*models.RetryRecord, error) {
	formula := fmt.Sprintf(
		"AND({%s} = '%s', {%s} = '%s', {%s} = '%s')",
		retryFieldOperation, escapeFormulaValue(operation),
		retryFieldRecordID, escapeFormulaValue(recordID),
		retryFieldStatus, models.RetryStatusPending,
	)
	records, err := r.client.List(ctx, r.table, formula)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return toRetryRecord(records[0]), nil
}

func toRetryRecord(record airtable.Record) *models.RetryRecord {
	item := &models.RetryRecord{
		ID:        record.ID,
		Operation: getString(record.Fields, retryFieldOperation),
		RecordID:  getString(record.Fields, retryFieldRecordID),
		Details:   getString(record.Fields, retryFieldDetails),
		Status:    getString(record.Fields, retryFieldStatus),
	}
	item.Created = getTime(record.Fields, retryFieldCreated)
	return item
}
