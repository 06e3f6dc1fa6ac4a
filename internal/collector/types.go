package collector

import (
	"fmt"
	"strconv"
	"time"
)

// Reading is one cycle's worth of host metrics. It is built once by
// Collect and never modified.
type Reading struct {
	CPUPercent float64   `json:"cpu_percent"`
	RAMPercent float64   `json:"ram_percent"`
	CPUTempC   float64   `json:"cpu_temp_c"`
	TaskCount  int       `json:"task_count"`
	RSSIDbm    int       `json:"rssi_dbm"` // negated signal magnitude
	Timestamp  time.Time `json:"timestamp"`
}

// String renders the console line printed once per cycle.
func (r Reading) String() string {
	return fmt.Sprintf("%s   CPU = %s   RAM = %s   Temp = %s   Tasks = %d   RSSI = %s",
		r.Timestamp.Format("15:04:05"),
		FormatFloat(r.CPUPercent),
		FormatFloat(r.RAMPercent),
		FormatFloat(r.CPUTempC),
		r.TaskCount,
		FormatRSSI(r.RSSIDbm))
}

// FormatRSSI renders the signal level with a leading minus sign, so a zero
// magnitude becomes "-0".
func FormatRSSI(dbm int) string {
	if dbm < 0 {
		dbm = -dbm
	}
	return "-" + strconv.Itoa(dbm)
}

// FormatFloat formats v without exponent and without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
