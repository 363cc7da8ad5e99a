package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/dedupe/resultstore"
)

// ErrConcurrentCommit is returned when another writer advanced the ledger
// between reading the latest version and committing the next one.
var ErrConcurrentCommit = errors.New("concurrent commit detected")

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Commit is one entry in the ledger: a versioned pointer from a scope to
// the run whose merged result is current.
type Commit struct {
	Version     uint64
	RunID       string
	ResultKey   string
	CommittedAt time.Time
}

// Ledger records which run is the current result for a scope, using
// DynamoDB conditional writes so concurrent publishers cannot silently
// overwrite each other. S3 has no compare-and-swap; DynamoDB provides
// the atomic version advancement that publishing needs.
//
// Table schema:
//   - Partition key: scope (string) - dataset or pipeline identifier
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name dedupe-commits \
//	  --attribute-definitions AttributeName=scope,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=scope,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Ledger struct {
	client DDBClient
	table  string
	scope  string
}

// NewLedger creates a commit ledger for the given scope.
func NewLedger(client DDBClient, table, scope string) *Ledger {
	return &Ledger{
		client: client,
		table:  table,
		scope:  scope,
	}
}

// Latest returns the most recent commit for the scope, or
// resultstore.ErrNotFound when nothing has been committed yet.
func (l *Ledger) Latest(ctx context.Context) (*Commit, error) {
	// "scope" is a DynamoDB reserved word, hence the #scope placeholder.
	resp, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.table),
		KeyConditionExpression: aws.String("#scope = :scope"),
		ExpressionAttributeNames: map[string]string{
			"#scope": "scope",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":scope": &types.AttributeValueMemberS{Value: l.scope},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, resultstore.ErrNotFound
	}

	return parseCommit(resp.Items[0])
}

// Commit advances the scope to the given run and returns the new entry.
// Returns ErrConcurrentCommit when another writer won the version race;
// callers may re-read Latest and retry.
func (l *Ledger) Commit(ctx context.Context, runID, resultKey string) (*Commit, error) {
	var version uint64

	latest, err := l.Latest(ctx)
	switch {
	case err == nil:
		version = latest.Version + 1
	case errors.Is(err, resultstore.ErrNotFound):
		version = 1
	default:
		return nil, err
	}

	commit := &Commit{
		Version:     version,
		RunID:       runID,
		ResultKey:   resultKey,
		CommittedAt: time.Now().UTC(),
	}

	// Conditional put: only succeed if this version doesn't exist yet.
	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item: map[string]types.AttributeValue{
			"scope":        &types.AttributeValueMemberS{Value: l.scope},
			"version":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", commit.Version)},
			"run_id":       &types.AttributeValueMemberS{Value: commit.RunID},
			"result_key":   &types.AttributeValueMemberS{Value: commit.ResultKey},
			"committed_at": &types.AttributeValueMemberS{Value: commit.CommittedAt.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrConcurrentCommit
		}
		return nil, fmt.Errorf("failed to commit version: %w", err)
	}

	return commit, nil
}

func parseCommit(item map[string]types.AttributeValue) (*Commit, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return nil, errors.New("invalid version attribute in ledger item")
	}
	runAttr, ok := item["run_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("invalid run_id attribute in ledger item")
	}
	keyAttr, ok := item["result_key"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("invalid result_key attribute in ledger item")
	}

	commit := &Commit{
		RunID:     runAttr.Value,
		ResultKey: keyAttr.Value,
	}
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &commit.Version); err != nil {
		return nil, fmt.Errorf("failed to parse version: %w", err)
	}
	if atAttr, ok := item["committed_at"].(*types.AttributeValueMemberS); ok {
		at, err := time.Parse(time.RFC3339Nano, atAttr.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse committed_at: %w", err)
		}
		commit.CommittedAt = at
	}
	return commit, nil
}
