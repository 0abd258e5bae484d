// Package dynamotest provides an in-memory DynamoDB client for tests.
//
// MemoryClient understands exactly what the single-table store sends: equality
// key conditions on the table key or a secondary index, attribute_not_exists
// conditions on puts, and all-or-nothing TransactWriteItems. It is not a
// general DynamoDB emulator.
package dynamotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Operation names accepted by FailOn and Calls.
const (
	OpGetItem            = "GetItem"
	OpPutItem            = "PutItem"
	OpQuery              = "Query"
	OpTransactWriteItems = "TransactWriteItems"
	OpCreateTable        = "CreateTable"
	OpDeleteTable        = "DeleteTable"
	OpDescribeTable      = "DescribeTable"
)

type table struct {
	hashKey  string
	rangeKey string
	indexes  map[string]string // index name -> hash attribute
	items    map[string]map[string]types.AttributeValue
}

// MemoryClient is a goroutine-safe in-memory stand-in for *dynamodb.Client.
type MemoryClient struct {
	mu       sync.Mutex
	tables   map[string]*table
	failures map[string]error
	calls    map[string]int
}

// NewMemoryClient returns a client with no tables. Tables are created on first
// write with a pk/sk key and a "gsi" index, or explicitly via CreateTable.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables:   make(map[string]*table),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (m *MemoryClient) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (m *MemoryClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Items returns a snapshot of every item in a table.
func (m *MemoryClient) Items(tableName string) []map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]map[string]types.AttributeValue, 0, len(t.items))
	for _, k := range t.sortedKeys() {
		out = append(out, t.items[k])
	}
	return out
}

// Put stores an item directly, bypassing conditions. Useful for seeding.
func (m *MemoryClient) Put(tableName string, item map[string]types.AttributeValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tableFor(tableName)
	key, err := t.itemKey(item)
	if err != nil {
		return err
	}
	t.items[key] = item
	return nil
}

func (m *MemoryClient) begin(op string) error {
	m.calls[op]++
	return m.failures[op]
}

func (m *MemoryClient) tableFor(name string) *table {
	t, ok := m.tables[name]
	if !ok {
		t = newTable("pk", "sk", map[string]string{"gsi": "gsi"})
		m.tables[name] = t
	}
	return t
}

func newTable(hashKey, rangeKey string, indexes map[string]string) *table {
	return &table{
		hashKey:  hashKey,
		rangeKey: rangeKey,
		indexes:  indexes,
		items:    make(map[string]map[string]types.AttributeValue),
	}
}

func (t *table) itemKey(item map[string]types.AttributeValue) (string, error) {
	hk, ok := stringAttr(item, t.hashKey)
	if !ok || hk == "" {
		return "", fmt.Errorf("dynamotest: missing hash key %q", t.hashKey)
	}
	rk, ok := stringAttr(item, t.rangeKey)
	if !ok || rk == "" {
		return "", fmt.Errorf("dynamotest: missing range key %q", t.rangeKey)
	}
	return hk + "\x00" + rk, nil
}

func (t *table) sortedKeys() []string {
	ks := make([]string, 0, len(t.items))
	for k := range t.items {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// GetItem returns the item stored under the key, if any.
func (m *MemoryClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpGetItem); err != nil {
		return nil, err
	}

	t := m.tableFor(aws.ToString(params.TableName))
	key, err := t.itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: t.items[key]}, nil
}

// PutItem stores an item, honouring an attribute_not_exists condition.
func (m *MemoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpPutItem); err != nil {
		return nil, err
	}

	t := m.tableFor(aws.ToString(params.TableName))
	key, err := t.itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	if !t.conditionHolds(key, aws.ToString(params.ConditionExpression)) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	t.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// TransactWriteItems applies every put or none of them.
func (m *MemoryClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpTransactWriteItems); err != nil {
		return nil, err
	}
	if len(params.TransactItems) > 100 {
		return nil, fmt.Errorf("dynamodb: transaction has %d items, max 100", len(params.TransactItems))
	}

	type write struct {
		t    *table
		key  string
		item map[string]types.AttributeValue
	}

	var (
		writes   []write
		reasons  = make([]types.CancellationReason, len(params.TransactItems))
		canceled bool
		seen     = make(map[string]bool)
	)
	for i, ti := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		if ti.Put == nil {
			return nil, errors.New("dynamotest: only Put is supported in transactions")
		}
		t := m.tableFor(aws.ToString(ti.Put.TableName))
		key, err := t.itemKey(ti.Put.Item)
		if err != nil {
			return nil, err
		}
		if seen[aws.ToString(ti.Put.TableName)+"\x00"+key] {
			return nil, errors.New("dynamodb: transaction cannot include multiple operations on one item")
		}
		seen[aws.ToString(ti.Put.TableName)+"\x00"+key] = true
		if !t.conditionHolds(key, aws.ToString(ti.Put.ConditionExpression)) {
			reasons[i] = types.CancellationReason{
				Code:    aws.String("ConditionalCheckFailed"),
				Message: aws.String("The conditional request failed"),
			}
			canceled = true
			continue
		}
		writes = append(writes, write{t: t, key: key, item: ti.Put.Item})
	}

	if canceled {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}
	for _, w := range writes {
		w.t.items[w.key] = w.item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// Query supports a single equality key condition on the table hash key or an
// index hash key, ScanIndexForward, Limit and ExclusiveStartKey.
func (m *MemoryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpQuery); err != nil {
		return nil, err
	}

	t := m.tableFor(aws.ToString(params.TableName))
	attr, value, err := parseEquality(aws.ToString(params.KeyConditionExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	want := t.hashKey
	if params.IndexName != nil {
		hash, ok := t.indexes[aws.ToString(params.IndexName)]
		if !ok {
			return nil, &types.ResourceNotFoundException{Message: aws.String("index not found: " + aws.ToString(params.IndexName))}
		}
		want = hash
	}
	if attr != want {
		return nil, fmt.Errorf("dynamotest: key condition on %q, expected %q", attr, want)
	}

	var matched []map[string]types.AttributeValue
	for _, k := range t.sortedKeys() {
		item := t.items[k]
		if v, ok := stringAttr(item, attr); ok && v == value {
			matched = append(matched, item)
		}
	}

	// sortedKeys orders by hash then range key, so within one partition the
	// items are already in ascending sort-key order.
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if params.ExclusiveStartKey != nil {
		start, err := t.itemKey(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		for i, item := range matched {
			if k, _ := t.itemKey(item); k == start {
				matched = matched[i+1:]
				break
			}
		}
	}

	out := &dynamodb.QueryOutput{}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
		last := matched[len(matched)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			t.hashKey:  last[t.hashKey],
			t.rangeKey: last[t.rangeKey],
		}
	}
	out.Items = matched
	out.Count = int32(len(matched))
	return out, nil
}

// CreateTable registers a table using its key schema and index definitions.
func (m *MemoryClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpCreateTable); err != nil {
		return nil, err
	}

	name := aws.ToString(params.TableName)
	if _, ok := m.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: aws.String("table already exists: " + name)}
	}

	hash, rng := hashAndRange(params.KeySchema)
	indexes := make(map[string]string)
	for _, gsi := range params.GlobalSecondaryIndexes {
		h, _ := hashAndRange(gsi.KeySchema)
		indexes[aws.ToString(gsi.IndexName)] = h
	}
	m.tables[name] = newTable(hash, rng, indexes)

	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

// DescribeTable reports created tables as ACTIVE.
func (m *MemoryClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpDescribeTable); err != nil {
		return nil, err
	}

	if _, ok := m.tables[aws.ToString(params.TableName)]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

// DeleteTable drops a table and its items.
func (m *MemoryClient) DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(OpDeleteTable); err != nil {
		return nil, err
	}

	name := aws.ToString(params.TableName)
	if _, ok := m.tables[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	delete(m.tables, name)
	return &dynamodb.DeleteTableOutput{}, nil
}

// conditionHolds evaluates the only condition the store writes.
func (t *table) conditionHolds(key, condition string) bool {
	if condition == "" {
		return true
	}
	if strings.Contains(condition, "attribute_not_exists") {
		_, exists := t.items[key]
		return !exists
	}
	return true
}

// parseEquality parses "<name> = <value>" as produced by the expression package.
func parseEquality(expr string, names map[string]string, values map[string]types.AttributeValue) (string, string, error) {
	lhs, rhs, ok := strings.Cut(expr, "=")
	if !ok || strings.Contains(expr, " AND ") {
		return "", "", fmt.Errorf("dynamotest: unsupported key condition %q", expr)
	}
	lhs, rhs = strings.TrimSpace(lhs), strings.TrimSpace(rhs)
	lhs = strings.Trim(lhs, "()")
	rhs = strings.Trim(rhs, "()")

	attr := lhs
	if strings.HasPrefix(lhs, "#") {
		attr, ok = names[lhs]
		if !ok {
			return "", "", fmt.Errorf("dynamotest: unknown attribute name %q", lhs)
		}
	}

	v, ok := values[rhs]
	if !ok {
		return "", "", fmt.Errorf("dynamotest: unknown attribute value %q", rhs)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", "", fmt.Errorf("dynamotest: key value %q is not a string", rhs)
	}
	return attr, s.Value, nil
}

func hashAndRange(schema []types.KeySchemaElement) (hash, rng string) {
	for _, el := range schema {
		switch el.KeyType {
		case types.KeyTypeHash:
			hash = aws.ToString(el.AttributeName)
		case types.KeyTypeRange:
			rng = aws.ToString(el.AttributeName)
		}
	}
	return hash, rng
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}
