package util

import (
	"strings"
)

// better way?
func IsWebsocketClosed(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "websocket") && strings.Contains(errStr, "closed")
}
