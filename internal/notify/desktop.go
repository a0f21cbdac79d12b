package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows notifications through the operating system notification center.
type DesktopNotifier struct {
	// Alert also plays the system alert sound.
	Alert bool
}

// NewDesktopNotifier sets the application name shown by the notification center.
func NewDesktopNotifier(appName string, alert bool) *DesktopNotifier {
	if appName != "" {
		beeep.AppName = appName
	}
	return &DesktopNotifier{Alert: alert}
}

func (d *DesktopNotifier) Supported() bool { return true }

// RequestPermission always grants; desktop notification centers have no per-app prompt here.
func (d *DesktopNotifier) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (d *DesktopNotifier) Notify(_ context.Context, n Notification) error {
	if d.Alert {
		return beeep.Alert(n.Title, n.Body, "")
	}
	return beeep.Notify(n.Title, n.Body, "")
}

// Disabled is a Notifier without display capability. The scheduler does nothing with it.
type Disabled struct{}

func (Disabled) Supported() bool { return false }

func (Disabled) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Disabled) Notify(context.Context, Notification) error { return nil }
