package handlers

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// mockDynamo stores items per table: table -> pkValue -> item map. Supports
// the operations the handler pipeline issues.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	failPuts bool // simulate storage unavailability
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

// pkOf picks the item's key attribute. Idempotency records carry both
// idempotency_key and order_id, so idempotency_key must win; order items
// never carry it.
func pkOf(attrs map[string]types.AttributeValue) (string, error) {
	if v, ok := attrs["idempotency_key"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := attrs["order_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", errors.New("no primary key attribute")
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts {
		return nil, errors.New("storage unavailable")
	}
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.tables[table][pk]
	if !exists {
		return nil, errors.New("item not found")
	}
	for placeholder, attr := range map[string]string{
		":done": "status", ":failed": "status", ":rb": "response_body",
		":rs": "response_status", ":ua": "updated_at", ":n": "note", ":new": "status",
	} {
		if v, ok := params.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPuts {
		return nil, errors.New("storage unavailable")
	}
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		pk, err := pkOf(p.Item)
		if err != nil {
			return nil, err
		}
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.TransactionCanceledException{}
		}
	}
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		pk, err := pkOf(p.Item)
		if err != nil {
			return nil, err
		}
		m.tables[table][pk] = p.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

// fakeSQS records sent message bodies.
type fakeSQS struct {
	mu     sync.Mutex
	bodies []string
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}
