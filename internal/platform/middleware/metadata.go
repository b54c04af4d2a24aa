package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}
type contextKeyDevice struct{}

var (
	ContextKeyClientIP  = contextKeyClientIP{}
	ContextKeyUserAgent = contextKeyUserAgent{}
	ContextKeyDevice    = contextKeyDevice{}
)

// ClientMetadata extracts the client IP, raw User-Agent, and a parsed device
// summary from the request and adds them to the context for handlers and
// audit events. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, ContextKeyClientIP, ClientIPFromRequest(r))
		ctx = context.WithValue(ctx, ContextKeyUserAgent, r.UserAgent())
		ctx = context.WithValue(ctx, ContextKeyDevice, deviceSummary(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgent retrieves the raw User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// GetDevice retrieves the parsed device summary ("Chrome 120 on Windows 10")
// from the context.
func GetDevice(ctx context.Context) string {
	if d, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return d
	}
	return ""
}

// WithClientMetadata injects client metadata into a context. Useful for
// service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, rawUserAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, rawUserAgent)
	ctx = context.WithValue(ctx, ContextKeyDevice, deviceSummary(rawUserAgent))
	return ctx
}

// ClientIPFromRequest resolves the originating IP, preferring the first entry
// of X-Forwarded-For set by the edge proxy.
func ClientIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func deviceSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return rawUA
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
