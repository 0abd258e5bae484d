package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableWaitTimeout bounds how long CreateTable and DeleteTable wait for the
// table status to settle.
const TableWaitTimeout = 2 * time.Minute

// TableAPI is the subset of *dynamodb.Client needed to manage the table.
type TableAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
	dynamodb.DescribeTableAPIClient
}

var _ TableAPI = (*dynamodb.Client)(nil)

// CreateTable creates the single table with its slug index and waits until it
// is active.
func CreateTable(ctx context.Context, client TableAPI, config Config) error {
	config.validate()

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(config.TableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(AttributePK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(AttributeSK), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(AttributePK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttributeSK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(AttributeGSI), AttributeType: types.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(config.IndexName),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String(AttributeGSI), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", config.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(config.TableName),
	}, TableWaitTimeout); err != nil {
		return fmt.Errorf("wait for table %s: %w", config.TableName, err)
	}
	return nil
}

// DeleteTable drops the table and waits until it is gone.
func DeleteTable(ctx context.Context, client TableAPI, tableName string) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("delete table %s: %w", tableName, err)
	}

	waiter := dynamodb.NewTableNotExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}, TableWaitTimeout); err != nil {
		return fmt.Errorf("wait for table %s deletion: %w", tableName, err)
	}
	return nil
}
