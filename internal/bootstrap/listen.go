package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"syscall"
)

// BindError is returned when no port in the tried range could be bound.
// Attempts counts the ports actually tried.
type BindError struct {
	FirstPort int
	Attempts  int
	Err       error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("no free port in %d-%d after %d attempts: %v",
		e.FirstPort, e.FirstPort+e.Attempts-1, e.Attempts, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Listen binds host:port. While the port is already in use it moves on to
// the next one, giving up after attempts tries. Any other bind error is
// returned as is. The returned port is the one actually bound.
func Listen(ctx context.Context, host string, port, attempts int, logger *slog.Logger) (net.Listener, int, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lc net.ListenConfig
	var lastErr error
	tried := 0

	for i := 0; i < attempts; i++ {
		p := port + i
		if p > 65535 {
			break
		}
		tried++
		ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(p)))
		if err == nil {
			return ln, p, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, fmt.Errorf("failed to bind port %d: %w", p, err)
		}
		lastErr = err
		logger.Warn("port already in use, trying next", "port", p, "next", p+1)
	}
	if tried == 0 {
		return nil, 0, fmt.Errorf("port %d out of range", port)
	}
	return nil, 0, &BindError{FirstPort: port, Attempts: tried, Err: lastErr}
}
