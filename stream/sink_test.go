package stream

import (
	"context"
	"errors"

	"github.com/jacentio/onetable/store"
)

var errSinkFailed = errors.New("sink failed")

// failingSink fails every delivery so tests can prove a record was skipped.
type failingSink struct{}

func (failingSink) BlogCreated(context.Context, store.Blog) error { return errSinkFailed }
func (failingSink) PostCreated(context.Context, store.Post) error { return errSinkFailed }
