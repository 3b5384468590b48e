package service

import (
	"context"
	"log/slog"
)

// Notifier delivers user-facing notifications. The auth flows only need
// password-reset delivery; SMTP, queues or provider SDKs sit behind this
// interface.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, name, link string) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// Default in development and tests.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, name, link string) error {
	n.Logger.Info("password reset notification",
		"email", email,
		"name", name,
		"link", link,
	)
	return nil
}
