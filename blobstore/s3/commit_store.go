package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentModification is returned when a commit loses the race
// against another writer committing the same version.
var ErrConcurrentModification = errors.New("s3: concurrent modification")

// ErrNoCommits is returned when the store has no committed snapshot yet.
var ErrNoCommits = errors.New("s3: no commits")

// DDBClient is the subset of the DynamoDB API the commit store uses.
type DDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Commit records a committed snapshot blob.
type Commit struct {
	// Version is the monotonically increasing commit number.
	Version int64

	// Name is the snapshot blob name within the store.
	Name string
}

// CommitStore tracks the current snapshot of a matrix store in a
// DynamoDB table, using conditional writes so that concurrent
// committers cannot both win the same version.
//
// The table uses a composite key: partition key "store" (S) and sort
// key "version" (N). Version 0 is reserved for the CURRENT pointer.
type CommitStore struct {
	client DDBClient
	table  string
	store  string
}

// NewCommitStore creates a commit store for the named matrix store.
func NewCommitStore(client DDBClient, table, store string) *CommitStore {
	return &CommitStore{
		client: client,
		table:  table,
		store:  store,
	}
}

// Latest returns the current commit.
func (c *CommitStore) Latest(ctx context.Context) (Commit, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]ddbtypes.AttributeValue{
			"store":   &ddbtypes.AttributeValueMemberS{Value: c.store},
			"version": &ddbtypes.AttributeValueMemberN{Value: "0"},
		},
	})
	if err != nil {
		return Commit{}, err
	}
	if out.Item == nil {
		return Commit{}, ErrNoCommits
	}
	return itemToCommit(out.Item, "currentVersion", "currentName")
}

// History returns up to limit commits, newest first.
func (c *CommitStore) History(ctx context.Context, limit int32) ([]Commit, error) {
	out, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("#s = :s AND version > :zero"),
		ExpressionAttributeNames: map[string]string{
			"#s": "store",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":s":    &ddbtypes.AttributeValueMemberS{Value: c.store},
			":zero": &ddbtypes.AttributeValueMemberN{Value: "0"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(out.Items))
	for _, item := range out.Items {
		commit, err := itemToCommit(item, "version", "name")
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// Commit records a new snapshot as version prev+1 and flips the
// CURRENT pointer to it. prev must be the version returned by Latest
// (or 0 for the first commit); if another writer committed in the
// meantime the conditional write fails with ErrConcurrentModification.
func (c *CommitStore) Commit(ctx context.Context, prev int64, name string) (Commit, error) {
	next := prev + 1

	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.table),
		ConditionExpression: aws.String("attribute_not_exists(version)"),
		Item: map[string]ddbtypes.AttributeValue{
			"store":   &ddbtypes.AttributeValueMemberS{Value: c.store},
			"version": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(next, 10)},
			"name":    &ddbtypes.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		var cond *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return Commit{}, ErrConcurrentModification
		}
		return Commit{}, err
	}

	// Flip the CURRENT pointer. The condition guards against an
	// already-advanced pointer from a racing committer.
	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.table),
		ConditionExpression: aws.String("attribute_not_exists(currentVersion) OR currentVersion < :v"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":v": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(next, 10)},
		},
		Item: map[string]ddbtypes.AttributeValue{
			"store":          &ddbtypes.AttributeValueMemberS{Value: c.store},
			"version":        &ddbtypes.AttributeValueMemberN{Value: "0"},
			"currentVersion": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(next, 10)},
			"currentName":    &ddbtypes.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		var cond *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return Commit{}, ErrConcurrentModification
		}
		return Commit{}, err
	}

	return Commit{Version: next, Name: name}, nil
}

func itemToCommit(item map[string]ddbtypes.AttributeValue, versionAttr, nameAttr string) (Commit, error) {
	vAttr, ok := item[versionAttr].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return Commit{}, fmt.Errorf("s3: missing %q attribute", versionAttr)
	}
	version, err := strconv.ParseInt(vAttr.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("s3: parse version: %w", err)
	}
	nAttr, ok := item[nameAttr].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return Commit{}, fmt.Errorf("s3: missing %q attribute", nameAttr)
	}
	return Commit{Version: version, Name: nAttr.Value}, nil
}
