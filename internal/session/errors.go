package session

import "errors"

var (
	// ErrBusy rejects a send while another send is in progress on the
	// same session. Transfers are never queued.
	ErrBusy = errors.New("transfer already in progress")

	// ErrKeyExchangeIncomplete rejects a send on an encrypted session
	// before the key exchange reached Ready.
	ErrKeyExchangeIncomplete = errors.New("key exchange incomplete")

	ErrNotConnected = errors.New("session not connected")
)
