package service

import (
	"context"

	"github.com/welthfin/backend/internal/auth"
)

// testContextWithUser builds a context carrying auth claims, the way
// the interceptor chain would after token verification.
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:      userID,
		Email:    userID + "@example.com",
		Verified: true,
	})
}
