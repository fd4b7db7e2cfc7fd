// Package orchestrator owns every subsystem of the pit controller core
// exclusively and drives them in the dependency order of spec.md §2 on a
// single cooperative tick, one owner draining one event loop rather than
// each subsystem running its own. External collaborators (UI, network,
// config codec) never reach into a subsystem directly; they submit
// commands through the entry points below, applied immediately to shadow
// state and picked up by the next Tick.
package orchestrator

import (
	"pitcore/errcode"
	"pitcore/internal/alarm"
	"pitcore/internal/config"
	"pitcore/internal/damper"
	"pitcore/internal/errdetect"
	"pitcore/internal/fan"
	"pitcore/internal/pidctl"
	"pitcore/internal/ports"
	"pitcore/internal/predictor"
	"pitcore/internal/probe"
	"pitcore/internal/session"
	"pitcore/internal/splitrange"
)

// Snapshot is the state broadcast at a fixed cadence to any bus subscriber
// (spec.md §6).
type Snapshot struct {
	NowMs    int64
	NowEpoch int64
	Unit     probe.Unit

	Setpoint float64

	PitTemp   float64
	PitOk     bool
	Meat1Temp float64
	Meat1Ok   bool
	Meat2Temp float64
	Meat2Ok   bool

	FanPct    float64
	DamperPct float64
	LidOpen   bool

	Meat1ETA    int64
	Meat1HasETA bool
	Meat2ETA    int64
	Meat2HasETA bool

	Errors []string
}

// Ports bundles every hardware/storage capability the orchestrator needs.
// Link is optional: when set, it is polled every Tick; when nil, link
// state is driven solely by SetLinkConnected (the console/UI command
// path).
type Ports struct {
	ADC    ports.ADCPort
	Fan    ports.PWMPort
	Damper ports.ServoPort
	Buzzer ports.BuzzerPort
	Link   ports.LinkPort
	Store  ports.Storage
}

// Orchestrator is the single owner of every control/monitoring subsystem.
type Orchestrator struct {
	cfg config.Config
	p   Ports

	sampler   *probe.Sampler
	pid       *pidctl.Controller
	fanAct    *fan.Actuator
	damperAct *damper.Actuator
	alarmM    *alarm.Machine
	errs      *errdetect.Detector
	pred      *predictor.Predictor
	rec       *session.Recorder

	// shadow state: setpoint and pitBand change only through the command
	// entry points below; pitReached is latched by Tick, and linkConnected
	// is set by SetLinkConnected or polled from Ports.Link each Tick
	setpoint      float64
	pitBand       float64
	pitReached    bool
	linkConnected bool

	lastProbeSampleMs int64
	probeSampledOnce  bool
	lastPIDSampleMs   int64
	pidSampledOnce    bool
	lastPredSampleMs  int64
	predSampledOnce   bool

	snapshot Snapshot
}

// New builds an Orchestrator wiring every subsystem from cfg. Call Boot
// once before the first Tick to attempt session crash recovery.
func New(cfg config.Config, p Ports) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		p:       p,
		pitBand: cfg.AlarmPitBandDeg,
		sampler: probe.NewSampler(cfg.Unit, cfg.Pit.Coeffs(), cfg.Meat1.Coeffs(), cfg.Meat2.Coeffs()),
		pid: pidctl.New(
			pidctl.Gains{Kp: cfg.Kp, Ki: cfg.Ki, Kd: cfg.Kd},
			pidctl.LidThresholds{DropPct: cfg.LidDropPct, RecoverPct: cfg.LidRecoverPct},
		),
		fanAct: fan.New(fan.Config{
			KickstartPct:          cfg.FanKickstartPct,
			KickstartDurationMs:   cfg.FanKickstartDurationMs,
			MinSpeedPct:           cfg.FanMinSpeedPct,
			LongPulseThresholdPct: cfg.FanLongPulseThreshPct,
			LongPulseCycleMs:      cfg.FanLongPulseCycleMs,
		}, p.Fan),
		damperAct: damper.New(damper.Config{
			ClosedAngleDeg: cfg.DamperClosedAngleDeg,
			OpenAngleDeg:   cfg.DamperOpenAngleDeg,
			MinPulseUs:     cfg.DamperMinPulseUs,
			MaxPulseUs:     cfg.DamperMaxPulseUs,
		}, p.Damper),
		alarmM: alarm.New(alarm.Config{
			PitBandDeg: cfg.AlarmPitBandDeg,
			ToneHz:     cfg.BuzzerToneHz,
			OnMs:       cfg.BuzzerOnMs,
			OffMs:      cfg.BuzzerOffMs,
		}, p.Buzzer),
		errs: errdetect.New(errdetect.Config{
			FireOutRateDegPerMin: cfg.FireOutRateDegPerMin,
			FireOutDurationMs:    cfg.FireOutDurationMs,
			FanSaturatedPct:      cfg.FanSaturatedPct,
		}),
		pred: predictor.New(),
		rec: session.New(session.Config{
			Capacity:         cfg.SessionCapacityPoints,
			SampleIntervalMs: cfg.SessionSampleIntervalMs,
			FlushIntervalMs:  cfg.SessionFlushIntervalMs,
			FilePath:         cfg.SessionFilePath,
		}, p.Store),
	}
	o.pid.SetEnabled(true)
	return o
}

// Boot attempts session-file crash recovery. Call once before the first
// Tick.
func (o *Orchestrator) Boot() error {
	return o.rec.Begin()
}

// Tick advances every subsystem by one step, in spec.md §2's dependency
// order: probes, control loop, actuators, alarms, error detection,
// predictor, session recording, then the published snapshot. nowMs is
// monotonic milliseconds; nowEpochSeconds is wall-clock epoch seconds, or
// 0 if not yet valid (pre-NTP).
func (o *Orchestrator) Tick(nowMs, nowEpochSeconds int64) {
	if o.p.Link != nil {
		o.linkConnected = o.p.Link.LinkConnected()
	}
	o.errs.UpdateLink(o.linkConnected)

	o.sampleProbes(nowMs)

	pitSnap := o.sampler.Snapshot(probe.Pit)
	meat1Snap := o.sampler.Snapshot(probe.Meat1)
	meat2Snap := o.sampler.Snapshot(probe.Meat2)

	o.errs.UpdateProbe(probe.Pit, pitSnap.Status)
	o.errs.UpdateProbe(probe.Meat1, meat1Snap.Status)
	o.errs.UpdateProbe(probe.Meat2, meat2Snap.Status)

	u := o.runPID(nowMs, pitSnap)

	damperPct, fanPct := splitrange.Map(u, o.cfg.FanOnThresholdPct)

	o.fanAct.SetSpeed(fanPct)
	o.fanAct.Update(nowMs)
	o.damperAct.SetPosition(damperPct)

	o.updatePitReached(pitSnap)
	o.alarmM.Update(
		pitSnap.Temperature, o.setpoint, o.pitReached,
		meat1Snap.Temperature, meat1Snap.Status,
		meat2Snap.Temperature, meat2Snap.Status,
		nowMs,
	)

	o.errs.UpdateFireOut(nowMs, pitSnap.Temperature, o.fanAct.EffectivePct())

	epochValid := nowEpochSeconds > 0
	o.runPredictor(nowMs, nowEpochSeconds, epochValid, meat1Snap, meat2Snap)

	o.rec.Sample(nowMs, nowEpochSeconds, o.buildDataPoint(pitSnap, meat1Snap, meat2Snap))
	_ = o.rec.Flush(nowMs, false)

	o.buildSnapshot(nowMs, nowEpochSeconds, pitSnap, meat1Snap, meat2Snap)
}

func (o *Orchestrator) sampleProbes(nowMs int64) {
	interval := o.cfg.SampleIntervalMs
	if interval <= 0 {
		interval = 250
	}
	if o.probeSampledOnce && nowMs-o.lastProbeSampleMs < interval {
		return
	}
	o.probeSampledOnce = true
	o.lastProbeSampleMs = nowMs

	rawPit := o.p.ADC.ReadRaw(int(probe.Pit))
	rawMeat1 := o.p.ADC.ReadRaw(int(probe.Meat1))
	rawMeat2 := o.p.ADC.ReadRaw(int(probe.Meat2))
	o.sampler.Sample(rawPit, rawMeat1, rawMeat2)
}

func (o *Orchestrator) runPID(nowMs int64, pitSnap probe.Snapshot) float64 {
	interval := o.cfg.PIDSampleMs
	if interval <= 0 {
		interval = 1000
	}
	if o.pidSampledOnce && nowMs-o.lastPIDSampleMs < interval {
		return o.pid.Output()
	}
	dtSeconds := float64(interval) / 1000
	if o.pidSampledOnce {
		dtSeconds = float64(nowMs-o.lastPIDSampleMs) / 1000
	}
	o.pidSampledOnce = true
	o.lastPIDSampleMs = nowMs
	return o.pid.Update(pitSnap.Temperature, o.setpoint, dtSeconds)
}

// updatePitReached latches once the pit first comes within the alarm band
// of the setpoint; the pit-deviation alarm stays armed for the life of the
// orchestrator from that point on (spec.md §4.6).
func (o *Orchestrator) updatePitReached(pitSnap probe.Snapshot) {
	if o.pitReached {
		return
	}
	if pitSnap.Status == probe.Ok && o.setpoint > 0 &&
		pitSnap.Temperature >= o.setpoint-o.pitBand && pitSnap.Temperature <= o.setpoint+o.pitBand {
		o.pitReached = true
	}
}

func (o *Orchestrator) runPredictor(nowMs, nowEpochSeconds int64, epochValid bool, meat1, meat2 probe.Snapshot) {
	interval := o.cfg.PredictorSampleIntervalMs
	if interval <= 0 {
		interval = 5000
	}
	if o.predSampledOnce && nowMs-o.lastPredSampleMs < interval {
		return
	}
	o.predSampledOnce = true
	o.lastPredSampleMs = nowMs

	o.pred.Sample(probe.Meat1, epochValid, nowEpochSeconds, meat1)
	o.pred.Sample(probe.Meat2, epochValid, nowEpochSeconds, meat2)
}

func (o *Orchestrator) buildDataPoint(pit, meat1, meat2 probe.Snapshot) session.DataPoint {
	var flags uint8
	if o.pid.LidOpen() {
		flags |= session.FlagLidOpen
	}
	for _, k := range o.alarmM.Active() {
		switch k {
		case alarm.PitHigh, alarm.PitLow:
			flags |= session.FlagAlarmPit
		case alarm.Meat1Done:
			flags |= session.FlagAlarmMeat1
		case alarm.Meat2Done:
			flags |= session.FlagAlarmMeat2
		}
	}
	for _, e := range o.errs.Active() {
		if e.Kind == errcode.FireOut {
			flags |= session.FlagFireOut
		}
	}
	if pit.Status != probe.Ok {
		flags |= session.FlagPitDisc
	}
	if meat1.Status != probe.Ok {
		flags |= session.FlagMeat1Disc
	}
	if meat2.Status != probe.Ok {
		flags |= session.FlagMeat2Disc
	}

	return session.DataPoint{
		PitX10:    session.EncodeFixed10(pit.Temperature),
		Meat1X10:  session.EncodeFixed10(meat1.Temperature),
		Meat2X10:  session.EncodeFixed10(meat2.Temperature),
		FanPct:    uint8(o.fanAct.EffectivePct()),
		DamperPct: uint8(o.damperAct.PositionPct()),
		Flags:     flags,
	}
}

func (o *Orchestrator) buildSnapshot(nowMs, nowEpoch int64, pit, meat1, meat2 probe.Snapshot) {
	m1 := o.pred.Evaluate(probe.Meat1, nowEpoch)
	m2 := o.pred.Evaluate(probe.Meat2, nowEpoch)

	errs := o.errs.Active()
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}

	o.snapshot = Snapshot{
		NowMs:    nowMs,
		NowEpoch: nowEpoch,
		Unit:     o.cfg.Unit,

		Setpoint: o.setpoint,

		PitTemp:   pit.Temperature,
		PitOk:     pit.Status == probe.Ok,
		Meat1Temp: meat1.Temperature,
		Meat1Ok:   meat1.Status == probe.Ok,
		Meat2Temp: meat2.Temperature,
		Meat2Ok:   meat2.Status == probe.Ok,

		FanPct:    o.fanAct.EffectivePct(),
		DamperPct: o.damperAct.PositionPct(),
		LidOpen:   o.pid.LidOpen(),

		Meat1ETA:    m1.ETAEpoch,
		Meat1HasETA: m1.HasETA,
		Meat2ETA:    m2.ETAEpoch,
		Meat2HasETA: m2.HasETA,

		Errors: msgs,
	}
}

// Snapshot returns the state built by the most recent Tick.
func (o *Orchestrator) Snapshot() Snapshot { return o.snapshot }

// ---- command entry points (spec.md §6); Console's Commander is satisfied
// by this set of methods. ----

func (o *Orchestrator) SetSetpoint(degrees float64) error {
	if degrees < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "SetSetpoint", Msg: "degrees must be >= 0"}
	}
	o.setpoint = degrees
	return nil
}

func (o *Orchestrator) SetMeatTarget(probeNum int, degrees float64) error {
	var idx probe.Index
	switch probeNum {
	case 1:
		idx = probe.Meat1
	case 2:
		idx = probe.Meat2
	default:
		return &errcode.E{C: errcode.InvalidParams, Op: "SetMeatTarget", Msg: "probe must be 1 or 2"}
	}
	o.alarmM.SetMeatTarget(probeNum, degrees)
	o.pred.SetTarget(idx, degrees)
	if degrees <= 0 {
		o.pred.Reset(idx)
	}
	return nil
}

func (o *Orchestrator) SetPitBand(degrees float64) error {
	if degrees <= 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: "SetPitBand", Msg: "band must be > 0"}
	}
	o.pitBand = degrees
	o.alarmM.SetPitBand(degrees)
	return nil
}

func (o *Orchestrator) AcknowledgeAlarms() { o.alarmM.Acknowledge() }

func (o *Orchestrator) StartSession() error {
	return o.rec.StartSession(o.snapshot.NowEpoch)
}

func (o *Orchestrator) EndSession() error {
	return o.rec.EndSession(o.snapshot.NowMs)
}

func (o *Orchestrator) ClearSession() error {
	return o.rec.ClearSession(o.snapshot.NowEpoch)
}

func (o *Orchestrator) SetAlarmEnabled(on bool) { o.alarmM.SetEnabled(on) }

func (o *Orchestrator) SetLinkConnected(connected bool) { o.linkConnected = connected }

// Recorder exposes the session recorder directly, for export commands
// (ToCSV/ToJSON) that don't belong on the narrow Commander interface.
func (o *Orchestrator) Recorder() *session.Recorder { return o.rec }
