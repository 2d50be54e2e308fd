package discovery

import (
	"context"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/godbus/dbus/v5"

	"github.com/sharathkunda/obexftp/discovery/internal/dbushelper"
	"github.com/sharathkunda/obexftp/errorkinds"
)

// RouteResolver answers "which local HCI adapter should an unrouted
// inquiry use", replacing the original discovery code's direct call to
// hci_get_route(NULL) with an injectable collaborator a test can fake.
type RouteResolver interface {
	DefaultAdapterID(ctx context.Context) (int, error)
}

// BlueZRouteResolver asks BlueZ over D-Bus for its default adapter and
// extracts the HCI device ID from its object path (".../hciN").
type BlueZRouteResolver struct {
	conn *dbus.Conn
}

// NewBlueZRouteResolver connects to the system bus. The returned resolver
// owns that connection; callers should not also manage its lifecycle.
func NewBlueZRouteResolver() (*BlueZRouteResolver, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("connecting to system D-Bus"))
	}
	return &BlueZRouteResolver{conn: conn}, nil
}

// DefaultAdapterID implements RouteResolver.
func (r *BlueZRouteResolver) DefaultAdapterID(ctx context.Context) (int, error) {
	obj := r.conn.Object(dbushelper.BluezBusName, dbushelper.BluezRootPath)

	var managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := obj.CallWithContext(ctx, dbushelper.DbusObjectManagerIface, 0).Store(&managed)
	if err != nil {
		return 0, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("listing BlueZ managed objects"))
	}

	for path, ifaces := range managed {
		if _, ok := ifaces[dbushelper.BluezAdapterIface]; !ok {
			continue
		}
		id, err := hciIDFromPath(path)
		if err != nil {
			continue
		}
		return id, nil
	}
	return 0, fault.Wrap(errorkinds.ErrAdapterNotFound, fmsg.With("no BlueZ adapter object found"))
}

// hciIDFromPath extracts N from an object path like /org/bluez/hci0.
func hciIDFromPath(path dbus.ObjectPath) (int, error) {
	parts := strings.Split(string(path), "/")
	last := parts[len(parts)-1]
	if !strings.HasPrefix(last, "hci") {
		return 0, fault.Wrap(errorkinds.ErrAdapterNotFound, fmsg.With("object path has no hciN suffix: "+string(path)))
	}
	return strconv.Atoi(strings.TrimPrefix(last, "hci"))
}

// Close releases the resolver's D-Bus connection.
func (r *BlueZRouteResolver) Close() error {
	return r.conn.Close()
}

// staticResolver always resolves to the same adapter ID, used by tests and
// by callers that already know which adapter they want.
type staticResolver struct{ id int }

// NewStaticResolver returns a RouteResolver fixed to adapterID.
func NewStaticResolver(adapterID int) RouteResolver {
	return staticResolver{id: adapterID}
}

func (s staticResolver) DefaultAdapterID(ctx context.Context) (int, error) {
	return s.id, nil
}
