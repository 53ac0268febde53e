package test_utils

import (
	"context"

	"github.com/aiutox/erp-calendar/pkg/user"
)

const TestUserUid = "test-user"

// ContextWithTestUser returns ctx carrying the test user in the given timezone.
func ContextWithTestUser(ctx context.Context, timezone string) context.Context {
	return user.WithUser(ctx, user.User{
		Uid:      TestUserUid,
		Settings: user.Settings{Timezone: timezone},
	})
}
