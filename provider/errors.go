package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"baselinedev/model"
)

// probeMessage is sent by TestConnection on backends that have no cheaper
// health check.
var probeMessage = []model.Message{{Role: model.RoleUser, Content: "Hello"}}

// isUnreachable reports transport failures: refused connections, DNS
// failures and per-request timeouts.
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "econnrefused") ||
		strings.Contains(msg, "no such host")
}

// kindForStatus maps an HTTP status from a cloud API to an ErrorKind.
func kindForStatus(status int) model.ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return model.KindAuthInvalid
	case http.StatusTooManyRequests:
		return model.KindRateLimited
	default:
		return model.KindUnknown
	}
}

// userMessage renders the user-facing text for a classified failure.
func userMessage(kind model.ErrorKind, backend string, err error) string {
	switch kind {
	case model.KindAuthInvalid:
		return fmt.Sprintf("Invalid %s API key. Please update your API key.", backend)
	case model.KindRateLimited:
		return fmt.Sprintf("%s rate limit exceeded. Please try again later.", backend)
	case model.KindUnreachable:
		return fmt.Sprintf("Cannot reach %s: %v", backend, err)
	default:
		return fmt.Sprintf("%s API error: %v", backend, err)
	}
}

func missingKeyError(backend, display string) *model.Error {
	return model.NewError(model.KindAuthInvalid, backend,
		fmt.Sprintf("%s API key not configured", display), nil)
}
