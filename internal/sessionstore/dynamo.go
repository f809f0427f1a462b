package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// dynamoItem is the table row. The table's TTL attribute is expiresAt.
type dynamoItem struct {
	SessionID string `dynamodbav:"sessionId"`
	Payload   string `dynamodbav:"payload"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt"`
}

// Dynamo stores sessions in a DynamoDB table keyed by sessionId.
type Dynamo[T any] struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

func NewDynamo[T any](client dynamoAPI, tableName string, ttl time.Duration) *Dynamo[T] {
	if client == nil {
		panic("sessionstore: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("sessionstore: table name cannot be empty")
	}
	return &Dynamo[T]{
		client:    client,
		tableName: tableName,
		ttl:       ttlOrDefault(ttl),
		now:       time.Now,
	}
}

func (s *Dynamo[T]) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"sessionId": &types.AttributeValueMemberS{Value: id},
	}
}

// Load treats rows past expiresAt as missing; DynamoDB deletes them lazily.
func (s *Dynamo[T]) Load(ctx context.Context, id string) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return zero, fmt.Errorf("sessionstore: dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return zero, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return zero, fmt.Errorf("sessionstore: unmarshal item: %w", err)
	}
	if item.ExpiresAt > 0 && s.now().Unix() >= item.ExpiresAt {
		return zero, ErrNotFound
	}

	var v T
	if err := json.Unmarshal([]byte(item.Payload), &v); err != nil {
		return zero, fmt.Errorf("sessionstore: decode session: %w", err)
	}
	return v, nil
}

func (s *Dynamo[T]) Save(ctx context.Context, id string, v T) error {
	if err := checkID(id); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sessionstore: encode session: %w", err)
	}
	now := s.now().UTC()
	item, err := attributevalue.MarshalMap(dynamoItem{
		SessionID: id,
		Payload:   string(payload),
		UpdatedAt: now.Format(time.RFC3339Nano),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("sessionstore: marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("sessionstore: dynamodb put: %w", err)
	}
	return nil
}

func (s *Dynamo[T]) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(id),
	})
	if err != nil {
		return fmt.Errorf("sessionstore: dynamodb delete: %w", err)
	}
	return nil
}
