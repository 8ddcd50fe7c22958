package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/config"
	apperrors "appointment-workers/internal/common/errors"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig:       &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"i/o timeout", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"permission denied", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.msg)))
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	c := testClient()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, "topology")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return errors.New("unavailable")
		}, "topology")
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeWorkflowEngineUnavailable))
		std, _ := apperrors.AsStandard(err)
		assert.True(t, std.Retryable)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		err := c.ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return errors.New("permission denied")
		}, "publish")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		std, _ := apperrors.AsStandard(err)
		assert.False(t, std.Retryable)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		slow := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := slow.ExecuteWithRetry(ctx, func(context.Context) error { return errors.New("timeout") }, "topology")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 5*time.Second, cfg.ConnectionTimeout)
	assert.True(t, cfg.UsePlaintextConnection)

	assert.Equal(t, 10*time.Second, ConfigFrom(config.CamundaConfig{}).ConnectionTimeout)
}
