// Package config defines the read-only configuration surface of spec.md
// §6: PID gains, actuator tunables, alarm/buzzer parameters, probe
// calibration, and sample/flush intervals. There is no file codec here;
// that collaborator lives outside the core (spec.md §1's Out-of-scope
// list), so the core only sees a validated, in-memory Config.
package config

import (
	"pitcore/internal/probe"
)

// Unit selects the temperature unit the whole core reports in.
type Unit = probe.Unit

const (
	Celsius    = probe.Celsius
	Fahrenheit = probe.Fahrenheit
)

// ProbeConfig mirrors probe.Coeffs plus the probe's display name.
type ProbeConfig struct {
	Name string `json:"name"`

	A         float64 `json:"a"`
	B         float64 `json:"b"`
	C         float64 `json:"c"`
	OffsetDeg float64 `json:"offset_deg"`
	RrefOhms  float64 `json:"rref_ohms"`

	ADCMax      int32 `json:"adc_max"`
	OpenThresh  int32 `json:"open_thresh"`
	ShortThresh int32 `json:"short_thresh"`
}

func (p ProbeConfig) Coeffs() probe.Coeffs {
	return probe.Coeffs{
		A: p.A, B: p.B, C: p.C,
		OffsetDeg:   p.OffsetDeg,
		RrefOhms:    p.RrefOhms,
		ADCMax:      p.ADCMax,
		OpenThresh:  p.OpenThresh,
		ShortThresh: p.ShortThresh,
	}
}

// Config is the whole core's read-only configuration, consumed once at
// boot by orchestrator.New; no command entry point replaces it at runtime
// (the pit band has its own entry point, SetPitBand).
type Config struct {
	Unit Unit `json:"unit"`

	Pit   ProbeConfig `json:"pit"`
	Meat1 ProbeConfig `json:"meat1"`
	Meat2 ProbeConfig `json:"meat2"`

	SampleIntervalMs int64 `json:"sample_interval_ms"`

	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`

	PIDSampleMs int64 `json:"pid_sample_ms"`

	LidDropPct    float64 `json:"lid_drop_pct"`
	LidRecoverPct float64 `json:"lid_recover_pct"`

	FanOnThresholdPct float64 `json:"fan_on_threshold_pct"`

	FanKickstartPct        float64 `json:"fan_kickstart_pct"`
	FanKickstartDurationMs int64   `json:"fan_kickstart_duration_ms"`
	FanMinSpeedPct         float64 `json:"fan_min_speed_pct"`
	FanLongPulseThreshPct  float64 `json:"fan_long_pulse_thresh_pct"`
	FanLongPulseCycleMs    int64   `json:"fan_long_pulse_cycle_ms"`

	DamperClosedAngleDeg float64 `json:"damper_closed_angle_deg"`
	DamperOpenAngleDeg   float64 `json:"damper_open_angle_deg"`
	DamperMinPulseUs     uint16  `json:"damper_min_pulse_us"`
	DamperMaxPulseUs     uint16  `json:"damper_max_pulse_us"`

	AlarmPitBandDeg float64 `json:"alarm_pit_band_deg"`
	BuzzerToneHz    uint32  `json:"buzzer_tone_hz"`
	BuzzerOnMs      int64   `json:"buzzer_on_ms"`
	BuzzerOffMs     int64   `json:"buzzer_off_ms"`

	FireOutRateDegPerMin float64 `json:"fire_out_rate_deg_per_min"`
	FireOutDurationMs    int64   `json:"fire_out_duration_ms"`
	FanSaturatedPct      float64 `json:"fan_saturated_pct"`

	PredictorSampleIntervalMs int64 `json:"predictor_sample_interval_ms"`

	SessionCapacityPoints   int    `json:"session_capacity_points"`
	SessionSampleIntervalMs int64  `json:"session_sample_interval_ms"`
	SessionFlushIntervalMs  int64  `json:"session_flush_interval_ms"`
	SessionFilePath         string `json:"session_file_path"`
}

// Default returns the factory configuration, matching the defaults called
// out throughout spec.md §4 and §6.
func Default() Config {
	return Config{
		Unit: Fahrenheit,

		Pit: ProbeConfig{
			Name: "pit", A: 0.0007343140544, B: 0.0002157437229, C: 0.0000000950703919,
			RrefOhms: 100_000, ADCMax: 4095, OpenThresh: 4085, ShortThresh: 10,
		},
		Meat1: ProbeConfig{
			Name: "meat1", A: 0.0007343140544, B: 0.0002157437229, C: 0.0000000950703919,
			RrefOhms: 100_000, ADCMax: 4095, OpenThresh: 4085, ShortThresh: 10,
		},
		Meat2: ProbeConfig{
			Name: "meat2", A: 0.0007343140544, B: 0.0002157437229, C: 0.0000000950703919,
			RrefOhms: 100_000, ADCMax: 4095, OpenThresh: 4085, ShortThresh: 10,
		},

		SampleIntervalMs: 250,

		Kp: 3, Ki: 0.05, Kd: 1,
		PIDSampleMs: 1000,

		LidDropPct: 6, LidRecoverPct: 2,

		FanOnThresholdPct: 60,

		FanKickstartPct: 75, FanKickstartDurationMs: 3000,
		FanMinSpeedPct: 20, FanLongPulseThreshPct: 25, FanLongPulseCycleMs: 10_000,

		DamperClosedAngleDeg: 10, DamperOpenAngleDeg: 170,
		DamperMinPulseUs: 1000, DamperMaxPulseUs: 2000,

		AlarmPitBandDeg: 15, BuzzerToneHz: 2700, BuzzerOnMs: 500, BuzzerOffMs: 500,

		FireOutRateDegPerMin: 5, FireOutDurationMs: 10 * 60_000, FanSaturatedPct: 95,

		PredictorSampleIntervalMs: 5000,

		SessionCapacityPoints:   5760, // 8h at 5s cadence
		SessionSampleIntervalMs: 5000,
		SessionFlushIntervalMs:  60_000,
		SessionFilePath:         "/session.dat",
	}
}

// Validate reports the first reason the configuration is unusable, or nil.
// The core never applies an invalid configuration; per spec.md §7,
// rejected values keep their prior setting.
func (c Config) Validate() error {
	switch {
	case c.AlarmPitBandDeg <= 0:
		return errInvalid("alarm_pit_band_deg must be > 0")
	case c.SampleIntervalMs <= 0:
		return errInvalid("sample_interval_ms must be > 0")
	case c.PIDSampleMs <= 0:
		return errInvalid("pid_sample_ms must be > 0")
	case c.FanOnThresholdPct < 0 || c.FanOnThresholdPct > 100:
		return errInvalid("fan_on_threshold_pct must be within [0,100]")
	case c.FanMinSpeedPct < 0 || c.FanMinSpeedPct > 100:
		return errInvalid("fan_min_speed_pct must be within [0,100]")
	case c.DamperMinPulseUs >= c.DamperMaxPulseUs:
		return errInvalid("damper_min_pulse_us must be < damper_max_pulse_us")
	case c.SessionCapacityPoints <= 0:
		return errInvalid("session_capacity_points must be > 0")
	}
	return nil
}

type validationError string

func (e validationError) Error() string { return string(e) }
func errInvalid(msg string) error       { return validationError(msg) }
