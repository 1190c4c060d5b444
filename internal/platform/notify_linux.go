//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall  = notifyDest + ".Notify"
	noTimeoutMS = int32(-1)
)

// Notify sends a desktop notification over the session bus using the
// freedesktop.org notification interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	timeout := opts.TimeoutMillis
	if timeout == 0 {
		timeout = noTimeoutMS
	}
	hints := map[string]dbus.Variant{
		"category": dbus.MakeVariant("transfer.complete"),
	}
	var id uint32
	err = conn.Object(notifyDest, notifyPath).
		Call(notifyCall, 0, AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, timeout).
		Store(&id)
	return err
}
