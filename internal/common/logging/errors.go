package logging

// TopmostWithCause follows the chain of Cause calls on err and returns the last error that still has a cause,
// i.e., usually the outermost message attached to the root error.
// Errors without a cause are returned as-is.
//
// Used with pkg/errors wrapping; logging the result with %+v includes the stack recorded where it was created.
func TopmostWithCause(err error) error {
	rv := err
	for rv != nil {
		c, ok := rv.(causer)
		if !ok {
			break
		}
		next := c.Cause()
		if _, ok := next.(causer); !ok {
			break
		}
		rv = next
	}
	return rv
}
