package salesforce

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactMaps(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"LastName": fmt.Sprintf("Contact %d", i)}
	}
	return out
}

func TestBulkInsertContacts_Batches(t *testing.T) {
	var sizes []int
	mock := &mockClient{
		insertCollectionFn: func(_ context.Context, sObjectName string, records []map[string]any) ([]CollectionResult, error) {
			assert.Equal(t, "Contact", sObjectName)
			sizes = append(sizes, len(records))
			results := make([]CollectionResult, len(records))
			for i := range records {
				results[i] = CollectionResult{Success: true}
			}
			return results, nil
		},
	}

	results, err := BulkInsertContacts(context.Background(), mock, contactMaps(450))
	require.NoError(t, err)
	assert.Len(t, results, 450)
	assert.Equal(t, []int{200, 200, 50}, sizes)
}

func TestBulkInsertContacts_Empty(t *testing.T) {
	results, err := BulkInsertContacts(context.Background(), &mockClient{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBulkInsertContacts_PartialFailure(t *testing.T) {
	calls := 0
	mock := &mockClient{
		insertCollectionFn: func(_ context.Context, _ string, records []map[string]any) ([]CollectionResult, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("REQUEST_LIMIT_EXCEEDED")
			}
			return make([]CollectionResult, len(records)), nil
		},
	}

	results, err := BulkInsertContacts(context.Background(), mock, contactMaps(250))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 200-250")
	assert.Len(t, results, 200)
}

func TestBulkUpdateContacts(t *testing.T) {
	var sizes []int
	mock := &mockClient{
		updateCollectionFn: func(_ context.Context, sObjectName string, records []CollectionRecord) ([]CollectionResult, error) {
			assert.Equal(t, "Contact", sObjectName)
			sizes = append(sizes, len(records))
			results := make([]CollectionResult, len(records))
			for i, r := range records {
				results[i] = CollectionResult{ID: r.ID, Success: true}
			}
			return results, nil
		},
	}

	updates := make([]ContactUpdate, 201)
	for i := range updates {
		updates[i] = ContactUpdate{ID: fmt.Sprintf("003%03d", i), Fields: map[string]any{"Phone": "555"}}
	}
	results, err := BulkUpdateContacts(context.Background(), mock, updates)
	require.NoError(t, err)
	assert.Equal(t, []int{200, 1}, sizes)
	assert.Equal(t, "003200", results[200].ID)
}

func TestBulkUpdateContacts_Error(t *testing.T) {
	mock := &mockClient{
		updateCollectionFn: func(context.Context, string, []CollectionRecord) ([]CollectionResult, error) {
			return nil, errors.New("boom")
		},
	}
	_, err := BulkUpdateContacts(context.Background(), mock, []ContactUpdate{{ID: "003"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: bulk update contacts batch 0-1")
}

func TestFailures(t *testing.T) {
	got := Failures([]CollectionResult{
		{ID: "1", Success: true},
		{Success: false, Errors: []string{"DUPLICATES_DETECTED"}},
	})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"DUPLICATES_DETECTED"}, got[0].Errors)
}
