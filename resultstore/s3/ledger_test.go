package s3

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/dedupe/resultstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // scope:version -> item

	// queryHook runs after a Query response is built, before it is
	// returned. Used to interleave a competing writer deterministically.
	queryHook func()
}

var _ DDBClient = (*mockDDBClient)(nil)

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scope := params.Item["scope"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := scope + ":" + version

	// Check conditional expression
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()

	scope := params.ExpressionAttributeValues[":scope"].(*types.AttributeValueMemberS).Value

	// Find items matching the scope, sort by version descending
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["scope"].(*types.AttributeValueMemberS).Value == scope {
			items = append(items, item)
		}
	}
	m.mu.RUnlock()

	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			vi := items[i]["version"].(*types.AttributeValueMemberN).Value
			vj := items[j]["version"].(*types.AttributeValueMemberN).Value
			if len(vi) < len(vj) || (len(vi) == len(vj) && vi < vj) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	if m.queryHook != nil {
		m.queryHook()
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func TestLedger_LatestBeforeAnyCommit(t *testing.T) {
	ledger := NewLedger(newMockDDBClient(), "dedupe-commits", "cora")

	_, err := ledger.Latest(context.Background())
	require.ErrorIs(t, err, resultstore.ErrNotFound)
}

func TestLedger_CommitAdvancesVersions(t *testing.T) {
	ledger := NewLedger(newMockDDBClient(), "dedupe-commits", "cora")

	first, err := ledger.Commit(context.Background(), "run-a", resultstore.ResultKey("run-a"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Version)

	second, err := ledger.Commit(context.Background(), "run-b", resultstore.ResultKey("run-b"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Version)

	latest, err := ledger.Latest(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, latest.Version)
	assert.Equal(t, "run-b", latest.RunID)
	assert.Equal(t, "runs/run-b/result", latest.ResultKey)
	assert.False(t, latest.CommittedAt.IsZero())
}

func TestLedger_ConcurrentCommitDetected(t *testing.T) {
	ddb := newMockDDBClient()
	ledger := NewLedger(ddb, "dedupe-commits", "cora")

	_, err := ledger.Commit(context.Background(), "run-a", resultstore.ResultKey("run-a"))
	require.NoError(t, err)

	// A competing writer lands version 2 right after our Latest read,
	// so our conditional put for version 2 must fail.
	competitor := NewLedger(ddb, "dedupe-commits", "cora")
	ddb.queryHook = func() {
		ddb.queryHook = nil
		_, err := competitor.Commit(context.Background(), "run-sneaky", resultstore.ResultKey("run-sneaky"))
		require.NoError(t, err)
	}

	_, err = ledger.Commit(context.Background(), "run-b", resultstore.ResultKey("run-b"))
	require.ErrorIs(t, err, ErrConcurrentCommit)

	// Retrying after re-reading Latest succeeds with the next version.
	retried, err := ledger.Commit(context.Background(), "run-b", resultstore.ResultKey("run-b"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, retried.Version)
}

func TestLedger_IsolatedScopes(t *testing.T) {
	ddb := newMockDDBClient()
	cora := NewLedger(ddb, "dedupe-commits", "cora")
	dblp := NewLedger(ddb, "dedupe-commits", "dblp")

	_, err := cora.Commit(context.Background(), "run-cora", resultstore.ResultKey("run-cora"))
	require.NoError(t, err)
	_, err = dblp.Commit(context.Background(), "run-dblp", resultstore.ResultKey("run-dblp"))
	require.NoError(t, err)

	latest, err := cora.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-cora", latest.RunID)

	latest, err = dblp.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-dblp", latest.RunID)
}
