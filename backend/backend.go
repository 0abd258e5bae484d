// Package backend selects and opens the store implementation named by the
// process configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/onetable/config"
	"github.com/jacentio/onetable/store"
	"github.com/jacentio/onetable/store/dynamo"
	"github.com/jacentio/onetable/store/relational"
)

// Kind names a backend family.
type Kind string

const (
	KindRelational Kind = "relational"
	KindDynamo     Kind = "dynamodb"
)

// DynamoScheme is the DATABASE_URL scheme that names a DynamoDB table.
const DynamoScheme = "dynamodb://"

// DynamoAPI is what the DynamoDB backend needs from a client: item access
// plus table management for CreateTable.
type DynamoAPI interface {
	dynamo.Client
	dynamo.TableAPI
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

// Backend is an opened store.
type Backend struct {
	store.Store

	Kind  Kind
	close func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// IsRelational reports whether url selects the relational backend.
func IsRelational(url string) bool {
	return relational.Supports(url)
}

// Open selects the backend from cfg.DatabaseURL and connects to it.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if IsRelational(cfg.DatabaseURL) {
		return OpenRelational(cfg, logger)
	}

	client, err := NewDynamoClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewDynamo(ctx, client, cfg, logger)
}

// OpenRelational connects to the SQL database in cfg.DatabaseURL.
func OpenRelational(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := relational.Open(cfg.DatabaseURL, relational.Options{
		AutoMigrate: cfg.AutoMigrate,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open relational backend: %w", err)
	}

	logger.Info("store backend selected",
		"backend", KindRelational,
		"dialect", s.DB().Dialector.Name(),
		"autoMigrate", cfg.AutoMigrate,
	)

	return &Backend{
		Store: s,
		Kind:  KindRelational,
		close: func() error {
			sqlDB, err := s.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

// NewDynamo builds the DynamoDB backend on an existing client, creating the
// table first when cfg.CreateTable is set.
func NewDynamo(ctx context.Context, client DynamoAPI, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dcfg := dynamo.Config{
		TableName: DynamoTableName(cfg),
		IndexName: cfg.DynamoIndex,
	}

	if cfg.CreateTable {
		if err := dynamo.CreateTable(ctx, client, dcfg); err != nil {
			return nil, fmt.Errorf("create dynamodb table: %w", err)
		}
		logger.Info("dynamodb table ready", "table", dcfg.TableName)
	}

	logger.Info("store backend selected",
		"backend", KindDynamo,
		"table", dcfg.TableName,
		"endpoint", cfg.DynamoEndpoint,
	)

	return &Backend{
		Store: dynamo.New(client, dcfg),
		Kind:  KindDynamo,
	}, nil
}

// NewDynamoClient loads the AWS configuration for cfg.AWSRegion. A custom
// endpoint gets static local credentials so DynamoDB Local works without a
// profile.
func NewDynamoClient(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}

// DynamoTableName returns the table named by a dynamodb://<table> URL, or
// cfg.DynamoTable for any other URL.
func DynamoTableName(cfg config.Config) string {
	if rest, ok := strings.CutPrefix(cfg.DatabaseURL, DynamoScheme); ok {
		if i := strings.IndexAny(rest, "/?"); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			return rest
		}
	}
	return cfg.DynamoTable
}
