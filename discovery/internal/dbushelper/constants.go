//go:build linux

// Package dbushelper holds the small set of BlueZ D-Bus interface and bus
// names needed to answer one question: which local HCI adapter should a
// route-less discovery call use. It deliberately does not grow into a full
// BlueZ binding — that breadth belongs to a dedicated Bluetooth adapter
// library, not to an OBEX file-transfer client.
package dbushelper

// The BlueZ bus and interface names used by discovery.RouteResolver.
const (
	DbusObjectManagerIface = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	DbusGetPropertyIface   = "org.freedesktop.DBus.Properties.Get"

	BluezBusName      = "org.bluez"
	BluezAdapterIface = "org.bluez.Adapter1"
	BluezRootPath      = "/org/bluez"
)
