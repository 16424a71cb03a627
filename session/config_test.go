package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/graphbridge/errors"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{ServerURL: "https://store.example.com", DataGraph: "geo"},
		},
		{
			name: "valid with extras",
			cfg: Config{
				ServerURL:        "https://store.example.com",
				DataGraph:        "geo",
				Languages:        []string{"en", "de"},
				Streaming:        true,
				IndependentReads: true,
				Request: RequestConfig{
					BearerToken: "tok",
					Timeout:     30 * time.Second,
				},
			},
		},
		{
			name:    "missing server URL",
			cfg:     Config{DataGraph: "geo"},
			wantErr: true,
		},
		{
			name:    "missing data graph",
			cfg:     Config{ServerURL: "https://store.example.com"},
			wantErr: true,
		},
		{
			name:    "empty",
			cfg:     Config{},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrMissingConfig)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}
