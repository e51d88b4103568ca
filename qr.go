package main

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// SessionShareLink is what a session QR code encodes: the lobby address
// with the session id as fragment
func SessionShareLink(base, sessionID string) string {
	return strings.TrimRight(base, "/") + "/ws#" + sessionID
}

// SessionQR renders the share link of a session as a PNG
func SessionQR(base, sessionID string) ([]byte, error) {
	return qrcode.Encode(SessionShareLink(base, sessionID), qrcode.Medium, qrSize)
}
