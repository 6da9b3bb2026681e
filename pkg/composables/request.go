package composables

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/user"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/constants"
)

var ErrNoUser = errors.New("no user found in context")

// UseLogger returns the request-scoped logger entry; falls back to the
// process logger when the middleware did not run.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		return logrus.NewEntry(configuration.Use().Logger())
	}
	return logger.(*logrus.Entry)
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok {
		return user.User{}, ErrNoUser
	}
	return u, nil
}
