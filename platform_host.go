//go:build !rp2040

package main

import (
	"github.com/spf13/afero"

	"pitcore/internal/config"
	"pitcore/internal/fakeports"
	"pitcore/internal/hwio"
	"pitcore/internal/orchestrator"
)

// newPorts wires the hardware capabilities to in-memory fakes for host
// builds (simulation, CI, development off the target board), while session
// storage uses the host OS filesystem through afero.NewOsFs: the same
// orchestrator.Ports shape as the rp2040 build, built without ever
// touching "machine".
func newPorts(cfg config.Config) orchestrator.Ports {
	return orchestrator.Ports{
		ADC:    fakeports.NewFakeADC(),
		Fan:    &fakeports.RecordingPWM{},
		Damper: &fakeports.RecordingServo{},
		Buzzer: &fakeports.RecordingBuzzer{},
		Store:  hwio.NewAferoStorage(afero.NewOsFs()),
	}
}
