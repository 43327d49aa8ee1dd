// Package transmission implements a bridge session backend for the
// Transmission RPC protocol.
//
// It wraps hekmon/transmissionrpc and translates its torrents into the
// bridge vocabulary. Dial performs the RPC version handshake so a returned
// session is known to be reachable and authenticated.
//
// # Usage
//
//	dialer := transmission.NewDialer(logger, transmission.WithTimeout(10*time.Second))
//	client := bridge.NewClient(store, dialer, creds, logger)
package transmission
