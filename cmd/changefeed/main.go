// Command changefeed is the Lambda entry point for the table's stream.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/onetable/config"
	"github.com/jacentio/onetable/stream"
)

func main() {
	logging, err := config.LoadLogging()
	if err != nil {
		slog.Error("invalid logging configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	h := stream.NewHandler(stream.NewLogSink(logger), logger)
	lambda.Start(h.HandleChanges)
}
