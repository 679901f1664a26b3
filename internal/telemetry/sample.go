package telemetry

import "time"

// Signal names emitted by the simulator and consumed by the detector.
const (
	SignalNozzleTemp    = "nozzle_temp_c"
	SignalBedTemp       = "bed_temp_c"
	SignalExtruderFlow  = "extruder_flow_mm3_s"
	SignalMotorCurrentX = "motor_current_x_a"
	SignalMotorCurrentY = "motor_current_y_a"
	SignalMotorCurrentZ = "motor_current_z_a"
	SignalVibrationRMS  = "vibration_rms_g"
	SignalPrintSpeed    = "print_speed_mm_s"
	SignalLayerHeight   = "layer_height_mm"
	SignalAmbientTemp   = "ambient_temp_c"
)

// layerSeconds is the pretend wall time per printed layer.
const layerSeconds = 12

// Sample is one telemetry record on the JSON-lines stream.
type Sample struct {
	TS           string             `json:"ts"`
	TSec         float64            `json:"t_sec"`
	LayerIndex   int                `json:"layer_index"`
	RunID        string             `json:"run_id"`
	FaultsActive []string           `json:"faults_active"`
	Signals      map[string]float64 `json:"signals"`
}

// Timestamp formats a time the way samples carry it: UTC, millisecond
// precision, trailing Z.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
