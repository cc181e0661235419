package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbusnotify "github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"go.uber.org/zap"
)

// Notifier delivers a composed payload and reports whether it was accepted.
type Notifier interface {
	Send(ctx context.Context, p Payload) error
}

type sendFunc func(ctx context.Context, n dbusnotify.Notification) (uint32, error)

// sendOverSessionBus delivers n to the freedesktop notification service on a private
// session bus connection.
func sendOverSessionBus(ctx context.Context, n dbusnotify.Notification) (uint32, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("connecting to session bus: %w", err)
	}
	defer conn.Close()

	return dbusnotify.SendNotification(conn, n)
}

// DesktopNotifier shows the payload through the org.freedesktop.Notifications service.
type DesktopNotifier struct {
	appName string
	expire  time.Duration
	logger  *zap.Logger
	send    sendFunc
}

func NewDesktopNotifier(cfg config.NotifyConfig, logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		appName: cfg.AppName,
		expire:  cfg.Expire(),
		logger:  logger.Named("desktop-notifier"),
		send:    sendOverSessionBus,
	}
}

func (n *DesktopNotifier) notification(p Payload) dbusnotify.Notification {
	note := dbusnotify.Notification{
		AppName: n.appName,
		AppIcon: p.IconKey(),
		Summary: p.Summary(),
		Body:    p.Body(),
		Hints: map[string]dbus.Variant{
			"category": dbus.MakeVariant("weather"),
		},
		// Sent as -1 on the wire: the notification server picks the timeout.
		ExpireTimeout: -time.Millisecond,
	}
	if n.expire > 0 {
		note.ExpireTimeout = n.expire
	}
	return note
}

func (n *DesktopNotifier) Send(ctx context.Context, p Payload) error {
	const op = "notify.Send"

	if p.IsZero() {
		return apperr.Notify(op, errors.New("empty payload"))
	}

	id, err := n.send(ctx, n.notification(p))
	if err != nil {
		n.logger.Warn("Desktop notification failed", zap.Error(err))
		return apperr.Notify(op, err)
	}

	n.logger.Debug("Notification shown",
		zap.Uint32("id", id),
		zap.String("summary", p.Summary()),
		zap.String("icon", p.IconKey()))
	return nil
}

// LogNotifier writes the payload to the log instead of the desktop.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("log-notifier")}
}

func (n *LogNotifier) Send(ctx context.Context, p Payload) error {
	if p.IsZero() {
		return apperr.Notify("notify.Send", errors.New("empty payload"))
	}
	n.logger.Info("Notification",
		zap.String("summary", p.Summary()),
		zap.String("body", p.Body()),
		zap.String("icon", p.IconKey()))
	return nil
}
