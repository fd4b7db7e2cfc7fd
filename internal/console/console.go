// Package console implements the shell-style debug command dispatcher
// used by the maintenance UART/stdin surface: a line of text is
// shlex-tokenized (so operators can quote messages) and routed to the
// same command entry points spec.md §6 exposes to the UI and network
// peer, via the Commander interface.
package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Commander is the subset of the orchestrator's command entry points the
// debug console can reach. Kept narrow and interface-typed so the console
// never holds a direct reference to orchestrator internals.
type Commander interface {
	SetSetpoint(degrees float64) error
	SetMeatTarget(probeNum int, degrees float64) error
	SetPitBand(degrees float64) error
	AcknowledgeAlarms()
	StartSession() error
	EndSession() error
	ClearSession() error
	SetAlarmEnabled(on bool)
	SetLinkConnected(connected bool)
}

// Console tokenizes and dispatches single lines of debug input.
type Console struct {
	cmd Commander
}

func New(cmd Commander) *Console { return &Console{cmd: cmd} }

// Dispatch parses one line and executes it, returning a human-readable
// response. Malformed input and rejected commands return an empty response
// and a non-nil error describing why; Dispatch itself never panics on bad
// input.
func (c *Console) Dispatch(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	tokens, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("console: tokenize %q: %w", line, err)
	}
	if len(tokens) == 0 {
		return "", nil
	}

	name := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch name {
	case "setpoint":
		deg, err := requireFloat(args, 0)
		if err != nil {
			return "", err
		}
		if err := c.cmd.SetSetpoint(deg); err != nil {
			return "", err
		}
		return fmt.Sprintf("setpoint set to %.1f", deg), nil

	case "meattarget":
		n, err := requireInt(args, 0)
		if err != nil {
			return "", err
		}
		deg, err := requireFloat(args, 1)
		if err != nil {
			return "", err
		}
		if err := c.cmd.SetMeatTarget(n, deg); err != nil {
			return "", err
		}
		return fmt.Sprintf("meat%d target set to %.1f", n, deg), nil

	case "pitband":
		deg, err := requireFloat(args, 0)
		if err != nil {
			return "", err
		}
		if err := c.cmd.SetPitBand(deg); err != nil {
			return "", err
		}
		return fmt.Sprintf("pit band set to %.1f", deg), nil

	case "ack":
		c.cmd.AcknowledgeAlarms()
		return "alarms acknowledged", nil

	case "startsession":
		if err := c.cmd.StartSession(); err != nil {
			return "", err
		}
		return "session started", nil

	case "endsession":
		if err := c.cmd.EndSession(); err != nil {
			return "", err
		}
		return "session ended", nil

	case "clearsession":
		if err := c.cmd.ClearSession(); err != nil {
			return "", err
		}
		return "session cleared", nil

	case "alarms":
		on, err := requireBool(args, 0)
		if err != nil {
			return "", err
		}
		c.cmd.SetAlarmEnabled(on)
		return fmt.Sprintf("alarms enabled=%v", on), nil

	case "link":
		on, err := requireBool(args, 0)
		if err != nil {
			return "", err
		}
		c.cmd.SetLinkConnected(on)
		return fmt.Sprintf("link connected=%v", on), nil

	default:
		return "", fmt.Errorf("console: unknown command %q", name)
	}
}

func requireFloat(args []string, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("console: missing numeric argument %d", i)
	}
	return strconv.ParseFloat(args[i], 64)
}

func requireInt(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("console: missing integer argument %d", i)
	}
	return strconv.Atoi(args[i])
}

func requireBool(args []string, i int) (bool, error) {
	if i >= len(args) {
		return false, fmt.Errorf("console: missing boolean argument %d", i)
	}
	return strconv.ParseBool(args[i])
}
