package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		expectedErr bool
		errContains string
		wantToken   string
	}{
		{
			name:        "empty header",
			authHeader:  "",
			expectedErr: true,
			errContains: "authorization header is required",
		},
		{
			name:        "no bearer prefix",
			authHeader:  "token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "wrong prefix",
			authHeader:  "Basic token123",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:        "bearer only no token",
			authHeader:  "Bearer",
			expectedErr: true,
			errContains: "must be Bearer token",
		},
		{
			name:       "valid bearer token",
			authHeader: "Bearer mytoken123",
			wantToken:  "mytoken123",
		},
		{
			name:       "bearer lowercase",
			authHeader: "bearer mytoken456",
			wantToken:  "mytoken456",
		},
		{
			name:       "bearer mixed case",
			authHeader: "BEARER mytoken789",
			wantToken:  "mytoken789",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.authHeader)
			if tt.expectedErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestIsPublicEndpoint(t *testing.T) {
	assert.True(t, isPublicEndpoint("/health"))
	assert.False(t, isPublicEndpoint("/ping"))
	assert.False(t, isPublicEndpoint("/welthfin.v1.TaxService/ComputeTaxReport"))
}

func TestUserClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := GetUserClaims(ctx)
	assert.False(t, ok)

	_, ok = GetUserID(ctx)
	assert.False(t, ok)

	claims := &UserClaims{UID: "user-1", Email: "u@example.com"}
	ctx = WithUserClaims(ctx, claims)

	got, ok := GetUserClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UID)

	uid, ok := GetUserID(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", uid)
}
