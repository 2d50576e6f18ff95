package media

import (
	"context"
	"errors"
	"testing"

	"workshophub/internal/tester"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte{0x89, 'P', 'N', 'G'}
	tester.NoErr(t, s.Put(ctx, Object{Key: "/covers/a.png", ContentType: "image/png", Data: data}))

	data[0] = 0
	obj, err := s.Get(ctx, "covers/a.png")
	tester.NoErr(t, err)
	tester.Eq(t, obj.ContentType, "image/png")
	tester.Eq(t, obj.Data[0], byte(0x89))

	_, err = s.Get(ctx, "covers/b.png")
	tester.True(t, errors.Is(err, ErrNotFound))
	tester.True(t, s.Put(ctx, Object{Key: "  "}) != nil)
}

func TestNewS3Store_Validation(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	tester.True(t, err != nil, "endpoint required")
	_, err = NewS3Store(S3Config{Endpoint: "minio:9000"})
	tester.True(t, err != nil, "keys required")
	_, err = NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"})
	tester.True(t, err != nil, "bucket required")
	s, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "covers"})
	tester.NoErr(t, err)
	tester.Eq(t, s.region, "us-east-1")
}
