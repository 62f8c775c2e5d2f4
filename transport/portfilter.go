package transport

import (
	"strconv"
	"strings"
)

// usbPath formats a bus number and a hub port chain into the canonical
// usb_path token used throughout this module (§8): "<bus>-<port>.<port>...".
// An empty port chain formats as "<bus>-", matching a device attached
// directly to the root hub with no intermediate hub ports recorded.
func usbPath(bus int, ports []int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(bus))
	b.WriteByte('-')
	for i, p := range ports {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(p))
	}
	return b.String()
}

// PortFilter restricts discovery to devices attached under one of a set
// of bus/port prefixes, per §8's "passes" law: a path passes if it is
// equal to, or a dotted-port descendant of, one of the filter's
// prefixes. An empty filter passes every path.
type PortFilter struct {
	prefixes []string
}

// NewPortFilter builds a PortFilter from a list of usb_path prefixes,
// e.g. []string{"1-2", "2-1.3"}.
func NewPortFilter(prefixes ...string) PortFilter {
	return PortFilter{prefixes: prefixes}
}

// Passes reports whether path is accepted by the filter.
func (f PortFilter) Passes(path string) bool {
	if len(f.prefixes) == 0 {
		return true
	}
	for _, prefix := range f.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+".") {
			return true
		}
	}
	return false
}
