package minio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "sess-1/itinerary", objectKey("sess-1", "itinerary"))
	assert.Equal(t, "travel-session/packing-list", objectKey("travel-session", "packing-list"))
}

func TestIsNoSuchKey(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.True(t, isNoSuchKey(missing))
	assert.True(t, isNoSuchKey(fmt.Errorf("get artifact: %w", missing)))

	denied := minio.ErrorResponse{Code: "AccessDenied"}
	assert.False(t, isNoSuchKey(denied))
	assert.False(t, isNoSuchKey(errors.New("connection refused")))
	assert.False(t, isNoSuchKey(nil))
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "http://host with spaces", Bucket: "b"})
	require.Error(t, err)
}
