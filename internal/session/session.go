// Package session implements the cook session recorder of spec.md §4.9: a
// fixed-capacity in-RAM ring of compact DataPoints, periodic append-only
// flush to persistent storage through the ports.Storage capability, and
// crash recovery on boot.
package session

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"pitcore/errcode"
	"pitcore/internal/mathx"
	"pitcore/internal/ports"
)

// Flag bits for DataPoint.Flags.
const (
	FlagLidOpen    uint8 = 0x01
	FlagAlarmPit   uint8 = 0x02
	FlagAlarmMeat1 uint8 = 0x04
	FlagAlarmMeat2 uint8 = 0x08
	FlagFireOut    uint8 = 0x10
	FlagPitDisc    uint8 = 0x20
	FlagMeat1Disc  uint8 = 0x40
	FlagMeat2Disc  uint8 = 0x80
)

const recordSize = 13 // 4 + 2 + 2 + 2 + 1 + 1 + 1
const headerSize = 4

// DataPoint is one packed sample: epoch seconds, three fixed-point (×10)
// temperatures, fan/damper percentages, and a flag bitmask.
type DataPoint struct {
	EpochSeconds uint32
	PitX10       int16
	Meat1X10     int16
	Meat2X10     int16
	FanPct       uint8
	DamperPct    uint8
	Flags        uint8
}

// EncodeFixed10 converts a temperature to the ×10 fixed-point
// representation, rounding to the nearest tenth and clamping to the int16
// range ([-3276.8, 3276.7]).
func EncodeFixed10(temp float64) int16 {
	scaled := temp * 10
	return int16(math.Round(mathx.Clamp(scaled, -32768, 32767)))
}

// DecodeFixed10 converts a ×10 fixed-point value back to a temperature.
func DecodeFixed10(v int16) float64 { return float64(v) / 10 }

func (d DataPoint) encode() [recordSize]byte {
	var b [recordSize]byte
	binary.LittleEndian.PutUint32(b[0:4], d.EpochSeconds)
	binary.LittleEndian.PutUint16(b[4:6], uint16(d.PitX10))
	binary.LittleEndian.PutUint16(b[6:8], uint16(d.Meat1X10))
	binary.LittleEndian.PutUint16(b[8:10], uint16(d.Meat2X10))
	b[10] = d.FanPct
	b[11] = d.DamperPct
	b[12] = d.Flags
	return b
}

func decodeDataPoint(b []byte) DataPoint {
	return DataPoint{
		EpochSeconds: binary.LittleEndian.Uint32(b[0:4]),
		PitX10:       int16(binary.LittleEndian.Uint16(b[4:6])),
		Meat1X10:     int16(binary.LittleEndian.Uint16(b[6:8])),
		Meat2X10:     int16(binary.LittleEndian.Uint16(b[8:10])),
		FanPct:       b[10],
		DamperPct:    b[11],
		Flags:        b[12],
	}
}

// Config holds the recorder's tunables, sourced from spec.md §6.
type Config struct {
	Capacity         int   // K; sized for 4-8h at 5s cadence, e.g. 5760
	SampleIntervalMs int64 // default 5000
	FlushIntervalMs  int64 // default 60000
	FilePath         string
}

// Recorder owns the in-RAM ring, the pending-flush queue, and the
// persistent session file.
type Recorder struct {
	cfg     Config
	storage ports.Storage

	ring  []DataPoint
	head  int
	count int

	wrapped bool
	active  bool

	startEpoch  int64
	totalPoints int64
	flushedUpTo int64

	sampledOnce bool
	flushedOnce bool

	lastSampleMs int64
	lastFlushMs  int64

	pending [][recordSize]byte
}

func New(cfg Config, storage ports.Storage) *Recorder {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 5760
	}
	return &Recorder{
		cfg:     cfg,
		storage: storage,
		ring:    make([]DataPoint, cfg.Capacity),
	}
}

func (r *Recorder) Active() bool       { return r.active }
func (r *Recorder) Count() int         { return r.count }
func (r *Recorder) Capacity() int      { return r.cfg.Capacity }
func (r *Recorder) Wrapped() bool      { return r.wrapped }
func (r *Recorder) StartEpoch() int64  { return r.startEpoch }
func (r *Recorder) TotalPoints() int64 { return r.totalPoints }
func (r *Recorder) FlushedUpTo() int64 { return r.flushedUpTo }

// oldestIndex returns the ring index of the logically-oldest retained
// point.
func (r *Recorder) oldestIndex() int {
	if r.count < r.cfg.Capacity {
		return 0
	}
	return r.head
}

// GetPoint returns the i-th oldest retained point, 0 <= i < Count().
func (r *Recorder) GetPoint(i int) (DataPoint, bool) {
	if i < 0 || i >= r.count {
		return DataPoint{}, false
	}
	idx := (r.oldestIndex() + i) % r.cfg.Capacity
	return r.ring[idx], true
}

// Sample snapshots the current state into a DataPoint if active and the
// sample-interval gate has elapsed. Returns true if a point was recorded.
func (r *Recorder) Sample(nowMs, nowEpochSeconds int64, pt DataPoint) bool {
	if !r.active {
		return false
	}
	interval := r.cfg.SampleIntervalMs
	if interval <= 0 {
		interval = 5000
	}
	if r.sampledOnce && nowMs-r.lastSampleMs < interval {
		return false
	}
	r.sampledOnce = true
	r.lastSampleMs = nowMs
	pt.EpochSeconds = uint32(nowEpochSeconds)

	r.ring[r.head] = pt
	r.head = (r.head + 1) % r.cfg.Capacity
	if r.count < r.cfg.Capacity {
		r.count++
	} else {
		r.wrapped = true
	}
	r.totalPoints++
	r.pending = append(r.pending, pt.encode())
	return true
}

// Flush writes every pending point to the session file, gated on
// FlushIntervalMs unless force is set (e.g. on EndSession). On write
// failure the pending points are kept for the next attempt and no
// user-visible error is raised, per spec.md §7.
func (r *Recorder) Flush(nowMs int64, force bool) error {
	if !force {
		interval := r.cfg.FlushIntervalMs
		if interval <= 0 {
			interval = 60_000
		}
		if r.flushedOnce && nowMs-r.lastFlushMs < interval {
			return nil
		}
	}
	r.flushedOnce = true
	if len(r.pending) == 0 {
		r.lastFlushMs = nowMs
		return nil
	}

	size, err := r.storage.Size(r.cfg.FilePath)
	if err != nil {
		return &errcode.E{C: errcode.SessionIOError, Op: "session.Flush", Err: err}
	}
	if size == 0 {
		var hdr [headerSize]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(r.startEpoch))
		if _, err := r.storage.AppendFile(r.cfg.FilePath, hdr[:]); err != nil {
			return &errcode.E{C: errcode.SessionIOError, Op: "session.Flush", Err: err}
		}
	}

	var buf bytes.Buffer
	for _, rec := range r.pending {
		buf.Write(rec[:])
	}
	if _, err := r.storage.AppendFile(r.cfg.FilePath, buf.Bytes()); err != nil {
		return &errcode.E{C: errcode.SessionIOError, Op: "session.Flush", Err: err}
	}

	r.flushedUpTo = r.totalPoints
	r.pending = r.pending[:0]
	r.lastFlushMs = nowMs
	return nil
}

// Begin attempts crash recovery from the session file. If the file is
// absent or unreadable, it is treated as "no prior session" and the
// recorder starts inactive and empty, per spec.md §7.
func (r *Recorder) Begin() error {
	raw, err := r.storage.ReadFile(r.cfg.FilePath)
	if err != nil {
		return nil
	}
	if len(raw) < headerSize {
		return nil
	}

	r.startEpoch = int64(binary.LittleEndian.Uint32(raw[0:headerSize]))
	body := raw[headerSize:]
	stored := len(body) / recordSize
	if stored == 0 {
		return nil
	}

	skip := 0
	if stored > r.cfg.Capacity {
		skip = stored - r.cfg.Capacity
	}

	r.ring = make([]DataPoint, r.cfg.Capacity)
	r.head = 0
	r.count = 0
	for i := skip; i < stored; i++ {
		off := i * recordSize
		pt := decodeDataPoint(body[off : off+recordSize])
		r.ring[r.count%r.cfg.Capacity] = pt
		r.count++
	}
	r.head = r.count % r.cfg.Capacity
	r.wrapped = stored > r.cfg.Capacity
	r.totalPoints = int64(stored)
	r.flushedUpTo = int64(stored)
	r.active = true
	r.pending = nil
	return nil
}

// StartSession clears the ring, sets startEpoch=now, marks the recorder
// active, and deletes any prior on-disk session file.
func (r *Recorder) StartSession(nowEpochSeconds int64) error {
	r.reset(nowEpochSeconds)
	r.active = true
	if err := r.storage.Remove(r.cfg.FilePath); err != nil {
		return &errcode.E{C: errcode.SessionIOError, Op: "session.StartSession", Err: err}
	}
	return nil
}

// EndSession flushes any pending points and stops recording, preserving
// the in-RAM ring and on-disk file for export.
func (r *Recorder) EndSession(nowMs int64) error {
	err := r.Flush(nowMs, true)
	r.active = false
	return err
}

// ClearSession resets the ring and deletes the on-disk file, leaving the
// recorder inactive.
func (r *Recorder) ClearSession(nowEpochSeconds int64) error {
	r.reset(nowEpochSeconds)
	r.active = false
	return r.storage.Remove(r.cfg.FilePath)
}

func (r *Recorder) reset(nowEpochSeconds int64) {
	r.ring = make([]DataPoint, r.cfg.Capacity)
	r.head = 0
	r.count = 0
	r.wrapped = false
	r.startEpoch = nowEpochSeconds
	r.totalPoints = 0
	r.flushedUpTo = 0
	r.sampledOnce = false
	r.flushedOnce = false
	r.lastSampleMs = 0
	r.lastFlushMs = 0
	r.pending = nil
}

// ToCSV renders every retained point, oldest first, temperatures divided
// by 10.
func (r *Recorder) ToCSV() string {
	var b strings.Builder
	b.WriteString("epoch,pit,meat1,meat2,fan,damper,flags\n")
	for i := 0; i < r.count; i++ {
		pt, _ := r.GetPoint(i)
		fmt.Fprintf(&b, "%d,%.1f,%.1f,%.1f,%d,%d,%d\n",
			pt.EpochSeconds, DecodeFixed10(pt.PitX10), DecodeFixed10(pt.Meat1X10),
			DecodeFixed10(pt.Meat2X10), pt.FanPct, pt.DamperPct, pt.Flags)
	}
	return b.String()
}

// ToJSON renders every retained point, oldest first, as a JSON array.
func (r *Recorder) ToJSON() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < r.count; i++ {
		pt, _ := r.GetPoint(i)
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b,
			`{"epoch":%d,"pit":%.1f,"meat1":%.1f,"meat2":%.1f,"fan":%d,"damper":%d,"flags":%d}`,
			pt.EpochSeconds, DecodeFixed10(pt.PitX10), DecodeFixed10(pt.Meat1X10),
			DecodeFixed10(pt.Meat2X10), pt.FanPct, pt.DamperPct, pt.Flags)
	}
	b.WriteString("]")
	return b.String()
}
