package collector

import (
	"errors"
	"fmt"
)

// ErrSensorUnavailable is matched by every *SensorError.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// SensorError reports a metric source that failed or produced output
// that could not be parsed. The cycle that hit it is abandoned.
type SensorError struct {
	Sensor string
	Err    error
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor %s unavailable: %v", e.Sensor, e.Err)
}

func (e *SensorError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSensorUnavailable.
func (e *SensorError) Is(target error) bool {
	return target == ErrSensorUnavailable
}

func sensorErr(sensor string, err error) error {
	return &SensorError{Sensor: sensor, Err: err}
}
