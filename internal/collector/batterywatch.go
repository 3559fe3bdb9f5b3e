package collector

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// BatteryWatcher listens for UPower PropertiesChanged signals on the system
// bus. Each battery property change emits one notification on the Changed
// channel; the daemon turns those into sample triggers. The channel is
// buffered with depth 1, so a burst of signals while a sample is being
// assembled collapses into a single pending notification.
type BatteryWatcher struct {
	conn    *dbus.Conn
	done    chan struct{}
	changed chan struct{}
	log     *slog.Logger
}

// NewBatteryWatcher connects to the system bus and subscribes to UPower
// device property changes.
func NewBatteryWatcher(logger *slog.Logger) (*BatteryWatcher, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchPathNamespace("/org/freedesktop/UPower/devices"),
	)
	if err != nil {
		return nil, err
	}

	w := &BatteryWatcher{
		conn:    conn,
		done:    make(chan struct{}),
		changed: make(chan struct{}, 1),
		log:     logger,
	}
	go w.listen()
	return w, nil
}

// Changed returns a channel that receives a value each time battery state changes.
func (w *BatteryWatcher) Changed() <-chan struct{} {
	return w.changed
}

// Close stops the watcher.
func (w *BatteryWatcher) Close() {
	close(w.done)
}

func (w *BatteryWatcher) listen() {
	ch := make(chan *dbus.Signal, 16)
	w.conn.Signal(ch)
	defer w.conn.RemoveSignal(ch)

	for {
		select {
		case sig := <-ch:
			if sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" || len(sig.Body) < 1 {
				continue
			}
			iface, ok := sig.Body[0].(string)
			if !ok || iface != "org.freedesktop.UPower.Device" {
				continue
			}
			w.log.Debug("battery property change", "path", sig.Path)
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case <-w.done:
			return
		}
	}
}
