package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr string
	}{
		{name: "none", input: nil, want: nil},
		{
			name:  "trimmed pairs",
			input: []string{"Authorization: Bearer token123", "X-Tenant:acme"},
			want:  map[string]string{"Authorization": "Bearer token123", "X-Tenant": "acme"},
		},
		{
			name:  "value keeps later colons",
			input: []string{"X-Upstream: http://localhost:4000"},
			want:  map[string]string{"X-Upstream": "http://localhost:4000"},
		},
		{name: "missing colon", input: []string{"Authorization"}, wantErr: "key:value"},
		{name: "empty key", input: []string{" : value"}, wantErr: "key cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test: -H values split on the first colon
			got, err := parseHeaders(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild(t *testing.T) {
	// Test: the version string shortens the commit hash
	orig := commit
	t.Cleanup(func() { commit = orig })

	commit = "0123456789abcdef"
	assert.Equal(t, "dev (0123456) now", build())
}
