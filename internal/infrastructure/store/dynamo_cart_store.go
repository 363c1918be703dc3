package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/domain/cart"
)

// DynamoCartStore implements cart.Store on DynamoDB, the document-database
// backend. One item per (user, product): partition key user_id, sort key
// product_id. Increments use the ADD update expression, so concurrent adds
// never lose an update.
type DynamoCartStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoCartItem is the DynamoDB item structure
type dynamoCartItem struct {
	UserID    string `dynamodbav:"user_id"`
	ProductID string `dynamodbav:"product_id"`
	Quantity  int    `dynamodbav:"quantity"`
}

func NewDynamoCartStore(client *dynamodb.Client, tableName string) *DynamoCartStore {
	return &DynamoCartStore{client: client, tableName: tableName}
}

func (s *DynamoCartStore) Get(ctx context.Context, userID string) ([]cart.LineEntry, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	entries := make([]cart.LineEntry, 0, len(result.Items))
	for _, av := range result.Items {
		var item dynamoCartItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart item: %w", err)
		}
		entries = append(entries, cart.LineEntry{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return entries, nil
}

func (s *DynamoCartStore) AddItem(ctx context.Context, userID, productID string, qty int) error {
	// ADD creates the item when absent and increments atomically otherwise.
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.tableName),
		Key:              s.key(userID, productID),
		UpdateExpression: aws.String("ADD quantity :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (s *DynamoCartStore) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	var err error
	if qty <= 0 {
		_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 s.key(userID, productID),
			ConditionExpression: aws.String("attribute_exists(user_id)"),
		})
	} else {
		_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 s.key(userID, productID),
			UpdateExpression:    aws.String("SET quantity = :q"),
			ConditionExpression: aws.String("attribute_exists(user_id)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":q": &types.AttributeValueMemberN{Value: strconv.Itoa(qty)},
			},
		})
	}
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return cart.ErrNotFound
		}
		return fmt.Errorf("failed to set quantity: %w", err)
	}
	return nil
}

func (s *DynamoCartStore) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(userID, productID),
	})
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *DynamoCartStore) Clear(ctx context.Context, userID string) error {
	entries, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	writes := make([]types.WriteRequest, 0, len(entries))
	for _, e := range entries {
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: s.key(userID, e.ProductID)},
		})
	}

	// BatchWriteItem caps at 25 requests per call.
	for start := 0; start < len(writes); start += 25 {
		end := start + 25
		if end > len(writes) {
			end = len(writes)
		}
		_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: writes[start:end]},
		})
		if err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
	}
	return nil
}

func (s *DynamoCartStore) key(userID, productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":    &types.AttributeValueMemberS{Value: userID},
		"product_id": &types.AttributeValueMemberS{Value: productID},
	}
}
