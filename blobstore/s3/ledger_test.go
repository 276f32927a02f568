package s3

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock honoring the conditional
// write the ledger relies on.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dataset := params.Item["dataset"].(*types.AttributeValueMemberS).Value
	run := params.Item["run"].(*types.AttributeValueMemberN).Value
	key := dataset + ":" + run

	if params.ConditionExpression != nil {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dataset := params.ExpressionAttributeValues[":d"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["dataset"].(*types.AttributeValueMemberS).Value == dataset {
			items = append(items, item)
		}
	}

	// Descending by run number (numeric, so compare by padded length first).
	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			vi := items[i]["run"].(*types.AttributeValueMemberN).Value
			vj := items[j]["run"].(*types.AttributeValueMemberN).Value
			if len(vi) < len(vj) || (len(vi) == len(vj) && vi < vj) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestRunLedger_FirstRun(t *testing.T) {
	ctx := context.Background()
	ledger := NewRunLedger(newMockDDBClient(), "echoscan-runs")

	_, err := ledger.Latest(ctx, "maps/cmb.fits")
	require.ErrorIs(t, err, ErrNoRuns)

	rec, err := ledger.Append(ctx, "maps/cmb.fits", RunRecord{
		ReportKey: "reports/cmb-1.json",
		Verdict:   "not significant",
		Matches:   12,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.Run)
	assert.False(t, rec.CompletedAt.IsZero())
}

func TestRunLedger_SequentialRuns(t *testing.T) {
	ctx := context.Background()
	ledger := NewRunLedger(newMockDDBClient(), "echoscan-runs")

	for i := 1; i <= 3; i++ {
		rec, err := ledger.Append(ctx, "maps/cmb.fits", RunRecord{Matches: i})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), rec.Run)
	}

	latest, err := ledger.Latest(ctx, "maps/cmb.fits")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest.Run)
	assert.Equal(t, 3, latest.Matches)
}

func TestRunLedger_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	ledger := NewRunLedger(newMockDDBClient(), "echoscan-runs")

	_, err := ledger.Append(ctx, "maps/cmb.fits", RunRecord{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Append(ctx, "maps/cmb.fits", RunRecord{})
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case ErrConcurrentRun:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	assert.Greater(t, successes, 0, "at least one writer must win")
}

func TestRunLedger_IsolatedDatasets(t *testing.T) {
	ctx := context.Background()
	ledger := NewRunLedger(newMockDDBClient(), "echoscan-runs")

	_, err := ledger.Append(ctx, "maps/a.fits", RunRecord{Verdict: "significant"})
	require.NoError(t, err)
	_, err = ledger.Append(ctx, "maps/b.fits", RunRecord{Verdict: "not significant"})
	require.NoError(t, err)

	a, err := ledger.Latest(ctx, "maps/a.fits")
	require.NoError(t, err)
	assert.Equal(t, "significant", a.Verdict)
	assert.Equal(t, uint64(1), a.Run)

	b, err := ledger.Latest(ctx, "maps/b.fits")
	require.NoError(t, err)
	assert.Equal(t, "not significant", b.Verdict)
}
