package crackcfg

import (
	"fmt"
	"net"
)

// Prometheus configures the Prometheus exporter.
type Prometheus struct {
	// Listen is the address the exporter serves /metrics on. Empty
	// disables the exporter.
	Listen string `long:"listen" description:"the interface we should listen on for Prometheus"`
}

// DefaultPrometheus is the default configuration for the Prometheus metrics
// exporter.
func DefaultPrometheus() Prometheus {
	return Prometheus{}
}

// Enabled returns whether or not Prometheus monitoring is enabled.
func (p *Prometheus) Enabled() bool {
	return p.Listen != ""
}

// Validate checks that the listen address, when set, is host:port.
func (p *Prometheus) Validate() error {
	if !p.Enabled() {
		return nil
	}

	if _, _, err := net.SplitHostPort(p.Listen); err != nil {
		return fmt.Errorf("invalid prometheus listen address %q: %w",
			p.Listen, err)
	}

	return nil
}

// Compile-time constraint to ensure Prometheus implements the Validator
// interface.
var _ Validator = (*Prometheus)(nil)
