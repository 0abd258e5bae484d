// Package stream turns DynamoDB stream records of the single table into
// blog and post change notifications.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/onetable/internal/keys"
	"github.com/jacentio/onetable/store"
)

// Sink receives newly created entities.
type Sink interface {
	BlogCreated(ctx context.Context, blog store.Blog) error
	PostCreated(ctx context.Context, post store.Post) error
}

// Handler processes DynamoDB stream events for the single table.
type Handler struct {
	sink   Sink
	logger *slog.Logger
}

// NewHandler creates a new stream handler. A nil sink logs each change.
func NewHandler(sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Handler{
		sink:   sink,
		logger: logger,
	}
}

// HandleChanges delivers every INSERT of a blog or post item to the sink.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != string(events.DynamoDBOperationTypeInsert) {
		return nil
	}

	image := record.Change.NewImage
	pk := getStringAttr(image, "pk")

	switch keys.KindOf(pk) {
	case keys.KindBlog:
		id, _ := keys.BlogID(pk)
		blog := store.Blog{
			ID:   id,
			Name: getStringAttr(image, "name"),
			Slug: getStringAttr(image, "slug"),
		}
		if err := h.sink.BlogCreated(ctx, blog); err != nil {
			return fmt.Errorf("blog %s: %w", id, err)
		}

	case keys.KindPosts:
		blogID, _ := keys.BlogID(pk)
		post := store.Post{
			ID:        getStringAttr(image, "sk"),
			Title:     getStringAttr(image, "title"),
			Content:   getStringAttr(image, "content"),
			ViewCount: int(getNumberAttr(image, "viewCount")),
			BlogID:    blogID,
		}
		if err := h.sink.PostCreated(ctx, post); err != nil {
			return fmt.Errorf("post %s: %w", post.ID, err)
		}

	default:
		h.logger.Debug("skipping record",
			"eventID", record.EventID,
			"pk", pk,
		)
	}

	return nil
}

// LogSink logs each change.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// BlogCreated implements Sink.
func (s *LogSink) BlogCreated(ctx context.Context, blog store.Blog) error {
	s.logger.InfoContext(ctx, "blog created",
		"blogId", blog.ID,
		"slug", blog.Slug,
	)
	return nil
}

// PostCreated implements Sink.
func (s *LogSink) PostCreated(ctx context.Context, post store.Post) error {
	s.logger.InfoContext(ctx, "post created",
		"postId", post.ID,
		"blogId", post.BlogID,
		"title", post.Title,
	)
	return nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}
