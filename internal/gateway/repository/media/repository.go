package media

import (
	"context"
	"errors"
)

// Object is one stored media blob.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store persists uploaded media such as article covers.
type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
}

var ErrNotFound = errors.New("media not found")
