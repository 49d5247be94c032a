package odrive

import (
	"log/slog"
	"time"

	"github.com/odrive-host/odrive-go/pkg/interaction"
	"github.com/odrive-host/odrive-go/pkg/log"
)

type options struct {
	logger         *slog.Logger
	protocolLogger log.Logger
	timeout        time.Duration
	hook           interaction.Hook
	serial         string
	sessionID      string
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProtocolLogger captures every transfer and exchange to logger.
func WithProtocolLogger(logger log.Logger) Option {
	return func(o *options) { o.protocolLogger = logger }
}

// WithTimeout sets the per-transfer timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithHook installs an exchange hook, e.g. telemetry.
func WithHook(hook interaction.Hook) Option {
	return func(o *options) { o.hook = hook }
}

// WithSerial records the device serial number on the session and its
// capture events.
func WithSerial(serial string) Option {
	return func(o *options) { o.serial = serial }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}
