// Package discovery finds OBEX-capable Bluetooth peers: it runs an HCI
// inquiry for nearby devices, then browses each one's SDP records to pick
// the right service class and RFCOMM channel for an obex.Session to dial.
package discovery
