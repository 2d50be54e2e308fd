package obex

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Logger is the narrow logging surface this package needs, satisfied
// directly by *logrus.Logger and *logrus.Entry. Callers that already run
// logrus elsewhere can pass their own entry in to get consistent fields.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// defaultLogger returns a logrus logger preconfigured the way this package
// expects its diagnostic output to look: text formatting, info level by
// default so per-packet Debugf lines stay quiet unless asked for.
func defaultLogger() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}

// config holds the validated options resolved from a Session's functional
// options at Open time.
type config struct {
	Handler EventHandler
	logger  Logger

	// MaxPacketSize is offered to the server during CONNECT and is
	// narrowed down if the server offers a smaller one. Zero means use
	// the package default.
	MaxPacketSize uint16 `validate:"omitempty,min=255,max=65535"`
}

func newConfig(opts ...Option) *config {
	c := &config{logger: defaultLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) validate() error {
	return validator.New().Struct(c)
}

// handler surfaces the resolved EventHandler, defaulting to a no-op.
func (c *config) handler() EventHandler {
	if c.Handler == nil {
		return nopHandler
	}
	return c.Handler
}

// Option configures a Session at Open time.
type Option func(*config)

// WithEventHandler installs the callback a Session notifies as requests
// progress.
func WithEventHandler(h EventHandler) Option {
	return func(c *config) { c.Handler = h }
}

// WithLogger overrides the package's default logrus logger, letting a
// caller route this package's diagnostics through its own preconfigured
// instance.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxPacketSize overrides the packet size offered during CONNECT.
func WithMaxPacketSize(size uint16) Option {
	return func(c *config) { c.MaxPacketSize = size }
}
