// Package notify reminds attendees shortly before their favorite sessions start.
package notify

//go:generate mockgen -destination=mocks/mock_notifier.go -package=mocks github.com/julefagdag/agenda/internal/notify Notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Permission is the user's answer to a notification permission request.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is a single reminder shown to the user.
type Notification struct {
	SessionID string
	Title     string
	Body      string
	Room      string
	Minutes   int
}

// Notifier delivers notifications on some display surface.
type Notifier interface {
	// Supported reports whether the surface can display notifications at all.
	Supported() bool
	// RequestPermission asks the user for permission to notify.
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, n Notification) error
}

// PermissionGate asks the Notifier for permission once and caches the answer for the
// lifetime of the gate.
type PermissionGate struct {
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	requested bool
	granted   bool
}

// NewPermissionGate wraps notifier. A nil notifier yields a gate that never allows delivery.
func NewPermissionGate(notifier Notifier, logger *zap.Logger) *PermissionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionGate{notifier: notifier, logger: logger}
}

// Allowed reports whether notifications may be delivered, requesting permission on first use.
func (g *PermissionGate) Allowed(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.requested {
		return g.granted
	}
	g.requested = true
	if g.notifier == nil || !g.notifier.Supported() {
		g.logger.Info("notifications unsupported")
		return false
	}
	perm, err := g.notifier.RequestPermission(ctx)
	if err != nil {
		g.logger.Warn("notification permission request failed", zap.Error(err))
		return false
	}
	g.granted = perm == PermissionGranted
	g.logger.Info("notification permission", zap.String("permission", string(perm)))
	return g.granted
}

// Deliver sends n if permission is granted. It is a silent no-op otherwise.
func (g *PermissionGate) Deliver(ctx context.Context, n Notification) (bool, error) {
	if !g.Allowed(ctx) {
		return false, nil
	}
	return true, g.notifier.Notify(ctx, n)
}
