// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger for the service.
// It scrubs obvious secrets and identifiers from request metadata before
// emitting structured logs, and attaches a request-scoped zerolog.Logger to
// the Gin context for handlers to enrich (see LoggerFrom).
//
// Default-safe: request and response bodies are never logged. Error report
// payloads routinely contain stack traces and user data, so only metadata
// ever reaches the log stream.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxQueryLogLength caps the number of bytes of the raw query string logged.
const maxQueryLogLength = 2048

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders lists extra HTTP header names whose values are fully replaced
// with "[REDACTED]". Matching is case-insensitive and merged with the
// built-in sensitive set (Authorization, Cookie, Set-Cookie, and the
// signature headers Sentry and Telegram attach to their deliveries).
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed and stores a request-scoped logger in the
// context.
//
// Behavior:
//   - Logs method, route path, query string, status, response size, latency,
//     and request headers, with regex-based redaction of bot tokens, email
//     addresses, and UUID-like identifiers in query strings and header
//     values.
//   - Fully masks built-in sensitive headers plus opts.MaskHeaders.
//   - Emits at INFO, WARN for 4xx, ERROR for 5xx.
//
// NOTE: redact UUIDs before the looser patterns so digit/hyphen segments of
// a UUID are not partially consumed.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Compile regex patterns once.
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Telegram bot tokens are "<numeric id>:<35 base64ish chars>"; they must
	// never appear in logs even when a client leaks one into a query string.
	botTokenRE := regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_\-]{30,}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := s
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = botTokenRE.ReplaceAllString(out, "[REDACTED:token]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		return out
	}

	// Build header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization":                   {},
		"cookie":                          {},
		"set-cookie":                      {},
		"sentry-hook-signature":           {},
		"x-telegram-bot-api-secret-token": {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// Fallback when route not matched / 404.
			path = c.Request.URL.Path
		}
		safeQuery := redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))

		// Scrub headers.
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		rid, _ := c.Get(requestIDKey)
		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Logger()

		// Make it available to handlers and services.
		c.Set(loggerKey, &l)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		ev := l.Info()
		switch {
		case len(c.Errors) > 0 || status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
