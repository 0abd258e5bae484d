package dynamo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/onetable/internal/dynamotest"
	"github.com/jacentio/onetable/store/dynamo"
)

func TestCreateTable(t *testing.T) {
	client := dynamotest.NewMemoryClient()
	ctx := context.Background()

	if err := dynamo.CreateTable(ctx, client, dynamo.Config{TableName: "blogs"}); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if got := client.Calls(dynamotest.OpDescribeTable); got == 0 {
		t.Error("expected CreateTable to wait for the table")
	}

	err := dynamo.CreateTable(ctx, client, dynamo.Config{TableName: "blogs"})
	var inUse *types.ResourceInUseException
	if !errors.As(err, &inUse) {
		t.Errorf("expected ResourceInUseException on second create, got %v", err)
	}
}

func TestDeleteTable(t *testing.T) {
	client := dynamotest.NewMemoryClient()
	ctx := context.Background()

	if err := dynamo.CreateTable(ctx, client, dynamo.Config{TableName: "blogs"}); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := dynamo.DeleteTable(ctx, client, "blogs"); err != nil {
		t.Fatalf("DeleteTable failed: %v", err)
	}

	err := dynamo.DeleteTable(ctx, client, "blogs")
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		t.Errorf("expected ResourceNotFoundException, got %v", err)
	}
}

func TestCreateTable_Error(t *testing.T) {
	client := dynamotest.NewMemoryClient()
	boom := errors.New("access denied")
	client.FailOn(dynamotest.OpCreateTable, boom)

	if err := dynamo.CreateTable(context.Background(), client, dynamo.DefaultConfig()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
