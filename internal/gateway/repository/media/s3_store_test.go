package media

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

// openTestS3 returns a store on a fresh bucket of TEST_S3_ENDPOINT.
func openTestS3(t *testing.T) *S3Store {
	t.Helper()
	endpoint := strings.TrimSpace(os.Getenv("TEST_S3_ENDPOINT"))
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT not set, skipping S3 integration test")
	}
	useSSL, _ := strconv.ParseBool(os.Getenv("TEST_S3_USE_SSL"))
	store, err := NewS3Store(S3Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEST_S3_SECRET_KEY"),
		Bucket:    "whub-test-" + uuid.NewString()[:8],
		UseSSL:    useSSL,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		for obj := range store.client.ListObjects(ctx, store.bucketName, minio.ListObjectsOptions{Recursive: true}) {
			if obj.Err == nil {
				_ = store.client.RemoveObject(ctx, store.bucketName, obj.Key, minio.RemoveObjectOptions{})
			}
		}
		_ = store.client.RemoveBucket(ctx, store.bucketName)
	})
	return store
}

func TestS3Store_PutGet(t *testing.T) {
	store := openTestS3(t)
	ctx := context.Background()
	data := []byte("\x89PNG\r\n\x1a\ncover")

	require.NoError(t, store.Put(ctx, Object{Key: "/covers/1/a.png", ContentType: "image/png", Data: data}))

	got, err := store.Get(ctx, "covers/1/a.png")
	require.NoError(t, err)
	require.Equal(t, "covers/1/a.png", got.Key)
	require.Equal(t, "image/png", got.ContentType)
	require.Equal(t, data, got.Data)

	_, err = store.Get(ctx, "covers/1/missing.png")
	require.ErrorIs(t, err, ErrNotFound)
}
