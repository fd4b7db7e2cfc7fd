// Command pitcore runs the pit controller core: it wires the
// configuration, hardware ports, and orchestrator together, drives the
// control loop on a fixed ticker, and exposes the command surface of
// spec.md §6 both on the bus (for the UI/network peer) and on stdin via
// the debug console, running the bus connection and the stdin command
// loop side by side in one select.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"pitcore/bus"
	"pitcore/internal/config"
	"pitcore/internal/console"
	"pitcore/internal/orchestrator"
	"pitcore/internal/timex"
)

const tickPeriod = 10 * time.Millisecond // 100 Hz, per spec.md §2
const snapshotPeriod = 1 * time.Second

var (
	topicSnapshot = bus.T("pit", "state", "snapshot")

	topicCmdSetpoint      = bus.T("pit", "cmd", "setpoint")
	topicCmdMeatTarget    = bus.T("pit", "cmd", "meat_target")
	topicCmdPitBand       = bus.T("pit", "cmd", "pit_band")
	topicCmdAck           = bus.T("pit", "cmd", "ack")
	topicCmdStartSession  = bus.T("pit", "cmd", "session", "start")
	topicCmdEndSession    = bus.T("pit", "cmd", "session", "end")
	topicCmdClearSession  = bus.T("pit", "cmd", "session", "clear")
	topicCmdAlarmsEnabled = bus.T("pit", "cmd", "alarms_enabled")
	topicCmdLinkConnected = bus.T("pit", "cmd", "link_connected")

	topicSessionExport = bus.T("pit", "session", "export")
)

// ExportFormat selects the rendering requested on topicSessionExport.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ExportRequest is the payload of a topicSessionExport Request.
type ExportRequest struct{ Format ExportFormat }

// ExportReply is the payload sent back on the request's ReplyTo topic.
type ExportReply struct{ Body string }

// SetpointCmd is the payload of topicCmdSetpoint.
type SetpointCmd struct{ Degrees float64 }

// MeatTargetCmd is the payload of topicCmdMeatTarget.
type MeatTargetCmd struct {
	Probe   int
	Degrees float64
}

// PitBandCmd is the payload of topicCmdPitBand.
type PitBandCmd struct{ Degrees float64 }

// BoolCmd is the shared payload shape for the alarms-enabled and
// link-connected commands.
type BoolCmd struct{ On bool }

func main() {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		fmt.Println("[pitcore] invalid configuration:", err)
		os.Exit(1)
	}

	o := orchestrator.New(cfg, newPorts(cfg))
	if err := o.Boot(); err != nil {
		fmt.Println("[pitcore] session recovery failed:", err)
	}

	b := bus.NewBus(8, "+")
	coreConn := b.NewConnection("core")
	defer coreConn.Disconnect()

	subSetpoint := coreConn.Subscribe(topicCmdSetpoint)
	subMeatTarget := coreConn.Subscribe(topicCmdMeatTarget)
	subPitBand := coreConn.Subscribe(topicCmdPitBand)
	subAck := coreConn.Subscribe(topicCmdAck)
	subStart := coreConn.Subscribe(topicCmdStartSession)
	subEnd := coreConn.Subscribe(topicCmdEndSession)
	subClear := coreConn.Subscribe(topicCmdClearSession)
	subAlarms := coreConn.Subscribe(topicCmdAlarmsEnabled)
	subLink := coreConn.Subscribe(topicCmdLinkConnected)
	subExport := coreConn.Subscribe(topicSessionExport)

	cons := console.New(o)
	stdinLines := make(chan string, 8)
	go readStdin(stdinLines)

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	snapshotTicker := time.NewTicker(snapshotPeriod)
	defer snapshotTicker.Stop()

	clock := timex.SystemClock{}

	fmt.Println("[pitcore] control loop started")

	for {
		select {
		case <-ticker.C:
			o.Tick(clock.NowMonotonicMs(), clock.NowEpochOrZero())

		case <-snapshotTicker.C:
			snap := o.Snapshot()
			coreConn.Publish(coreConn.NewMessage(topicSnapshot, snap, true))

		case m := <-subSetpoint.Channel():
			if c, ok := m.Payload.(SetpointCmd); ok {
				logReject("setpoint", o.SetSetpoint(c.Degrees))
			}

		case m := <-subMeatTarget.Channel():
			if c, ok := m.Payload.(MeatTargetCmd); ok {
				logReject("meat_target", o.SetMeatTarget(c.Probe, c.Degrees))
			}

		case m := <-subPitBand.Channel():
			if c, ok := m.Payload.(PitBandCmd); ok {
				logReject("pit_band", o.SetPitBand(c.Degrees))
			}

		case <-subAck.Channel():
			o.AcknowledgeAlarms()

		case <-subStart.Channel():
			logReject("session_start", o.StartSession())

		case <-subEnd.Channel():
			logReject("session_end", o.EndSession())

		case <-subClear.Channel():
			logReject("session_clear", o.ClearSession())

		case m := <-subAlarms.Channel():
			if c, ok := m.Payload.(BoolCmd); ok {
				o.SetAlarmEnabled(c.On)
			}

		case m := <-subLink.Channel():
			if c, ok := m.Payload.(BoolCmd); ok {
				o.SetLinkConnected(c.On)
			}

		case m := <-subExport.Channel():
			req, _ := m.Payload.(ExportRequest)
			body := o.Recorder().ToCSV()
			if req.Format == ExportJSON {
				body = o.Recorder().ToJSON()
			}
			coreConn.Reply(m, ExportReply{Body: body}, false)

		case line := <-stdinLines:
			resp, err := cons.Dispatch(line)
			if err != nil {
				fmt.Println("[console] error:", err)
				continue
			}
			if resp != "" {
				fmt.Println("[console]", resp)
			}
		}
	}
}

func logReject(op string, err error) {
	if err != nil {
		fmt.Printf("[pitcore] %s rejected: %v\n", op, err)
	}
}

func readStdin(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}
