// Package obex implements an OBEX (Object Exchange) client session: the
// request/response state machine, header encoding, body streaming and the
// multi-step folder-navigation protocol used by the OBEX File Transfer
// (FTP) and IrMC/OPP profiles.
//
// A Session is opened over one Transport (Bluetooth RFCOMM, IrDA, a custom
// cable callback, or a loopback transport for local testing) and lives
// across many request/response pairs. Only one request may be in flight on
// a Session at a time; callers serialize their own calls.
package obex
