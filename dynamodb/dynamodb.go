// Package dynamodb provides an ezfs.Backend that stores file contents as
// items in an Amazon DynamoDB table.
//
// Each file is one item: the path is the partition key and the content lives
// in a binary attribute. DynamoDB caps items at 400 KB, so this backend
// suits small artifacts like manifests, checkpoints, and configuration
// rather than bulk data. Renames use a transactional write so the source
// and destination change together.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/ezfs"
)

const (
	pathAttr    = "path"
	contentAttr = "content"
)

// Client is the subset of the DynamoDB API the backend uses. *dynamodb.Client
// satisfies it; tests substitute fakes.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Backend stores file contents as DynamoDB items.
type Backend struct {
	client Client
	table  string
}

var _ ezfs.Backend = (*Backend)(nil)

// New creates a backend over the given table. The table must already exist
// with a string partition key named "path".
func New(client Client, table string) *Backend {
	return &Backend{
		client: client,
		table:  table,
	}
}

func pathKey(path string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pathAttr: &types.AttributeValueMemberS{Value: path},
	}
}

// ReadBytes fetches the complete content stored at path using a strongly
// consistent read.
func (b *Backend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.table),
		Key:            pathKey(path),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", path, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
	}
	content, ok := out.Item[contentAttr].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("item %s has no binary %s attribute", path, contentAttr)
	}
	return content.Value, nil
}

// WriteBytes stores data at path, creating or overwriting the item.
func (b *Backend) WriteBytes(ctx context.Context, path string, data []byte) error {
	_, err := b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item: map[string]types.AttributeValue{
			pathAttr:    &types.AttributeValueMemberS{Value: path},
			contentAttr: &types.AttributeValueMemberB{Value: data},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put item %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an item exists at path.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(b.table),
		Key:                  pathKey(path),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("#p"),
		ExpressionAttributeNames: map[string]string{
			"#p": pathAttr,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get item %s: %w", path, err)
	}
	return out.Item != nil, nil
}

// Remove deletes the item at path, using a condition so a missing item
// surfaces as ErrNotFound instead of a silent no-op.
func (b *Backend) Remove(ctx context.Context, path string) error {
	_, err := b.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(b.table),
		Key:                 pathKey(path),
		ConditionExpression: aws.String("attribute_exists(#p)"),
		ExpressionAttributeNames: map[string]string{
			"#p": pathAttr,
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("%s: %w", path, ezfs.ErrNotFound)
		}
		return fmt.Errorf("failed to delete item %s: %w", path, err)
	}
	return nil
}

// Rename moves the item from src to dst, overwriting dst if present. The
// destination put and conditional source delete run in one transaction, so
// the move commits atomically or not at all. A same-path rename is a no-op
// but still requires src to exist; DynamoDB rejects a transaction touching
// one item twice.
func (b *Backend) Rename(ctx context.Context, src, dst string) error {
	if src == dst {
		exists, err := b.Exists(ctx, src)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return nil
	}

	content, err := b.ReadBytes(ctx, src)
	if err != nil {
		return err
	}

	_, err = b.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(b.table),
					Item: map[string]types.AttributeValue{
						pathAttr:    &types.AttributeValueMemberS{Value: dst},
						contentAttr: &types.AttributeValueMemberB{Value: content},
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName:           aws.String(b.table),
					Key:                 pathKey(src),
					ConditionExpression: aws.String("attribute_exists(#p)"),
					ExpressionAttributeNames: map[string]string{
						"#p": pathAttr,
					},
				},
			},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			// The source vanished between the read and the transaction.
			return fmt.Errorf("%s: %w", src, ezfs.ErrNotFound)
		}
		return fmt.Errorf("failed to rename item %s to %s: %w", src, dst, err)
	}
	return nil
}
