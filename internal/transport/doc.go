// Package transport abstracts the duplex connection the gateway client
// drives.
//
// The client is written against the Dialer/Conn pair rather than a concrete
// socket, so the websocket implementation and the in-memory fake are
// interchangeable at construction time. A Conn delivers inbound frames on
// Messages() and reports its own death exactly once on Done(), whether the
// close was local, remote, or an error.
package transport
