package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
)

// decodeJSON reads the request body into dest, mapping malformed input to a
// validation error so handlers answer 400 instead of 500.
func decodeJSON(r *http.Request, dest any) error {
	if err := json.UnmarshalRead(r.Body, dest); err != nil {
		return errors.Validation("invalid request body: " + err.Error())
	}
	return nil
}

// clientIP returns the caller's address for rate-limit keying. The RealIP
// middleware has already folded X-Forwarded-For / X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
