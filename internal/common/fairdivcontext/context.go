package fairdivcontext

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Context is an extension of Go's context which also includes a logger. This allows us to pass round a contextual logger
// while retaining type-safety
type Context struct {
	context.Context
	Log *logrus.Entry
}

// Background creates an empty context with a default logger.  It is analogous to context.Background()
func Background() *Context {
	return &Context{
		Context: context.Background(),
		Log:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// New returns a context that encapsulates both a go context and a logger.
// A nil logger is replaced by one writing to the standard logrus logger.
func New(ctx context.Context, log *logrus.Entry) *Context {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Context{
		Context: ctx,
		Log:     log,
	}
}

// WithCancel returns a copy of parent with a new Done channel. It is analogous to context.WithCancel()
func WithCancel(parent *Context) (*Context, context.CancelFunc) {
	c, cancel := context.WithCancel(parent.Context)
	return &Context{
		Context: c,
		Log:     parent.Log,
	}, cancel
}

// WithTimeout returns a copy of parent cancelled after timeout. It is analogous to context.WithTimeout()
// A non-positive timeout leaves the deadline of parent untouched.
func WithTimeout(parent *Context, timeout time.Duration) (*Context, context.CancelFunc) {
	if timeout <= 0 {
		return WithCancel(parent)
	}
	c, cancel := context.WithTimeout(parent.Context, timeout)
	return &Context{
		Context: c,
		Log:     parent.Log,
	}, cancel
}

// WithLogField returns a copy of parent with the supplied key-value added to the logger
func WithLogField(parent *Context, key string, val interface{}) *Context {
	return &Context{
		Context: parent.Context,
		Log:     parent.Log.WithField(key, val),
	}
}
