package cache

import (
	"testing"
	"time"

	apperrors "sjsage522/bountyradar/pkg/errors"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")
	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	err := mc.Set("bountyradar_test_key", []byte("test_value"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("bountyradar_test_key")
	assert.NoError(t, err)
	assert.Equal(t, "test_value", string(value))

	err = mc.Delete("bountyradar_test_key")
	assert.NoError(t, err)

	_, err = mc.Get("bountyradar_test_key")
	assert.ErrorIs(t, err, ErrMiss)

	// deleting a missing key is not an error
	assert.NoError(t, mc.Delete("bountyradar_test_key"))
}

func TestMemcacheServiceUnreachable(t *testing.T) {
	mc := NewMemcacheService("127.0.0.1:1")

	err := mc.Ping()
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeCache))

	_, err = mc.Get("bountyradar_test_key")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeCache))
	assert.NotErrorIs(t, err, ErrMiss)
}
