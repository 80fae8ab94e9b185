package lidar

import (
	"errors"
	"fmt"
)

// ErrTransportFormat marks raw buffer transport failures: a truncated or
// oversized buffer whose length does not match the sensor geometry. Decode
// of the offending frame is aborted; previously published frames are kept.
var ErrTransportFormat = errors.New("transport format error")

// ErrConfiguration marks invalid sensor metadata or physical model
// parameters. It is raised at construction time, before any reconstruction
// attempt, and is fatal to that configuration.
var ErrConfiguration = errors.New("configuration error")

// TransportFormatErrorf wraps ErrTransportFormat with detail.
func TransportFormatErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTransportFormat, fmt.Sprintf(format, args...))
}

// ConfigurationErrorf wraps ErrConfiguration with detail.
func ConfigurationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
