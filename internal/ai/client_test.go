package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name    string
		apiKey  string
		model   string
		wantErr bool
	}{
		{
			name:    "valid configuration",
			apiKey:  "test-key",
			model:   "gpt-4o-mini",
			wantErr: false,
		},
		{
			name:    "missing api key",
			apiKey:  "",
			model:   "gpt-4o-mini",
			wantErr: true,
		},
		{
			name:    "missing model",
			apiKey:  "test-key",
			model:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.apiKey, tt.model, logger)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && client == nil {
				t.Error("NewClient() returned nil client")
			}
			if !tt.wantErr {
				if client.model != tt.model {
					t.Errorf("model = %v, want %v", client.model, tt.model)
				}
				if client.maxRetries != 3 {
					t.Errorf("maxRetries = %v, want 3", client.maxRetries)
				}
				if client.baseDelay != time.Second {
					t.Errorf("baseDelay = %v, want 1s", client.baseDelay)
				}
			}
		})
	}
}

func TestClient_isRetryable(t *testing.T) {
	logger := zap.NewNop()
	client := &Client{
		logger:     logger,
		maxRetries: 3,
		baseDelay:  time.Second,
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "authentication error",
			err:  errors.New("authentication failed"),
			want: false,
		},
		{
			name: "unauthorized error",
			err:  errors.New("unauthorized access"),
			want: false,
		},
		{
			name: "401 error",
			err:  errors.New("status code 401"),
			want: false,
		},
		{
			name: "invalid request error",
			err:  errors.New("invalid request format"),
			want: false,
		},
		{
			name: "bad request error",
			err:  errors.New("bad request"),
			want: false,
		},
		{
			name: "400 error",
			err:  errors.New("status code 400"),
			want: false,
		},
		{
			name: "rate limit error",
			err:  errors.New("rate limit exceeded"),
			want: true,
		},
		{
			name: "timeout error",
			err:  errors.New("request timeout"),
			want: true,
		},
		{
			name: "network error",
			err:  errors.New("network connection failed"),
			want: true,
		},
		{
			name: "500 error",
			err:  errors.New("status code 500"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.isRetryable(tt.err)
			if got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Complete_ContextCancellation(t *testing.T) {
	logger := zap.NewNop()

	client, err := NewClient("test-key", "gpt-4o-mini", logger)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.baseDelay = 10 * time.Millisecond // Short delay for testing

	// Create cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("test message"),
	}

	_, err = client.Complete(ctx, messages)
	if err == nil {
		t.Error("Complete() with cancelled context should return error")
	}
}
