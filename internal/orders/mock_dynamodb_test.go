package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a simple mock that supports PutItem, GetItem, UpdateItem and
// TransactWriteItems. It stores items per table in a nested map:
// table -> pkValue -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
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
func pkOf(attrs map[string]types.AttributeValue) (string, string, error) {
	if v, ok := attrs["idempotency_key"]; ok {
		return "idempotency_key", v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := attrs["order_id"]; ok {
		return "order_id", v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", "", errors.New("no primary key attribute")
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	_, pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		expr := *params.ConditionExpression
		if expr == "attribute_not_exists(order_id)" || expr == "attribute_not_exists(idempotency_key)" {
			if _, exists := m.tables[table][pk]; exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
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
	_, pk, err := pkOf(params.Key)
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
	_, pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.tables[table][pk]
	if !exists {
		return nil, errors.New("item not found")
	}
	// If ConditionExpression is of form "#s = :expected", compare statuses
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		curr, ok := item["status"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		if curr.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	// naive apply of the SET expressions used by the store
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// First pass: verify condition expressions
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		_, pk, err := pkOf(p.Item)
		if err != nil {
			return nil, err
		}
		expr := *p.ConditionExpression
		if expr == "attribute_not_exists(order_id)" || expr == "attribute_not_exists(idempotency_key)" {
			if _, exists := m.tables[table][pk]; exists {
				return nil, &types.TransactionCanceledException{}
			}
		}
	}
	// Second pass: apply all puts
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		_, pk, err := pkOf(p.Item)
		if err != nil {
			return nil, err
		}
		m.tables[table][pk] = p.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}
