package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the ledger uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrConcurrentRun is returned when another writer claimed the run number
// first. Retry Append to pick up the next number.
var ErrConcurrentRun = errors.New("concurrent run recorded")

// ErrNoRuns is returned by Latest when the dataset has no recorded runs.
var ErrNoRuns = errors.New("no runs recorded")

// RunRecord is one completed analysis run of a dataset.
type RunRecord struct {
	Dataset     string
	Run         uint64
	ReportKey   string
	Verdict     string
	Matches     int
	CompletedAt time.Time
}

// RunLedger records completed analysis runs in DynamoDB. S3 has no
// compare-and-swap, so the run numbering lives here: a conditional write
// assigns each run a unique, monotonically increasing number per dataset.
//
// Table schema:
//   - Partition key: dataset (string)
//   - Sort key: run (number)
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name echoscan-runs \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=run,AttributeType=N \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=run,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type RunLedger struct {
	client    DDBClient
	tableName string
}

// NewRunLedger creates a ledger over the given table.
func NewRunLedger(client DDBClient, tableName string) *RunLedger {
	return &RunLedger{client: client, tableName: tableName}
}

// Latest returns the most recent run recorded for dataset.
func (l *RunLedger) Latest(ctx context.Context, dataset string) (*RunRecord, error) {
	resp, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(l.tableName),
		KeyConditionExpression: aws.String("dataset = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: dataset},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query run ledger: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoRuns
	}
	return decodeRun(resp.Items[0])
}

// Append records a completed run, assigning the next run number. The
// Dataset, Run and CompletedAt fields of rec are filled in by the ledger.
func (l *RunLedger) Append(ctx context.Context, dataset string, rec RunRecord) (*RunRecord, error) {
	var latest uint64
	switch prev, err := l.Latest(ctx, dataset); {
	case err == nil:
		latest = prev.Run
	case errors.Is(err, ErrNoRuns):
	default:
		return nil, err
	}

	rec.Dataset = dataset
	rec.Run = latest + 1
	rec.CompletedAt = time.Now().UTC()

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"dataset":      &types.AttributeValueMemberS{Value: rec.Dataset},
			"run":          &types.AttributeValueMemberN{Value: strconv.FormatUint(rec.Run, 10)},
			"report_key":   &types.AttributeValueMemberS{Value: rec.ReportKey},
			"verdict":      &types.AttributeValueMemberS{Value: rec.Verdict},
			"matches":      &types.AttributeValueMemberN{Value: strconv.Itoa(rec.Matches)},
			"completed_at": &types.AttributeValueMemberS{Value: rec.CompletedAt.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#r)"),
		ExpressionAttributeNames: map[string]string{
			"#r": "run",
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrConcurrentRun
		}
		return nil, fmt.Errorf("record run: %w", err)
	}
	return &rec, nil
}

func decodeRun(item map[string]types.AttributeValue) (*RunRecord, error) {
	rec := &RunRecord{}

	if attr, ok := item["dataset"].(*types.AttributeValueMemberS); ok {
		rec.Dataset = attr.Value
	} else {
		return nil, errors.New("run ledger: missing dataset attribute")
	}

	attr, ok := item["run"].(*types.AttributeValueMemberN)
	if !ok {
		return nil, errors.New("run ledger: missing run attribute")
	}
	run, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("run ledger: parse run number: %w", err)
	}
	rec.Run = run

	if attr, ok := item["report_key"].(*types.AttributeValueMemberS); ok {
		rec.ReportKey = attr.Value
	}
	if attr, ok := item["verdict"].(*types.AttributeValueMemberS); ok {
		rec.Verdict = attr.Value
	}
	if attr, ok := item["matches"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.Atoi(attr.Value); err == nil {
			rec.Matches = n
		}
	}
	if attr, ok := item["completed_at"].(*types.AttributeValueMemberS); ok {
		if ts, err := time.Parse(time.RFC3339Nano, attr.Value); err == nil {
			rec.CompletedAt = ts
		}
	}
	return rec, nil
}
