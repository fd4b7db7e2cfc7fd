//go:build rp2040

package main

import (
	"machine"

	"github.com/spf13/afero"
	"tinygo.org/x/drivers/pca9685"

	"pitcore/internal/config"
	"pitcore/internal/hwio"
	"pitcore/internal/orchestrator"
)

// Pin/channel assignments for the reference board. Adjust to taste for a
// different layout; nothing downstream of newPorts knows these numbers.
const (
	pinBuzzer    = machine.GPIO15
	fanChannel   = uint8(0)
	servoChannel = uint8(1)
)

var (
	adcPitPin   = machine.ADC{Pin: machine.ADC0}
	adcMeat1Pin = machine.ADC{Pin: machine.ADC1}
	adcMeat2Pin = machine.ADC{Pin: machine.ADC2}
)

// newPorts wires every ports capability to real hardware: a PCA9685 I2C
// chip driving both the fan PWM and the damper servo, three onboard ADC
// channels for the probes, a GPIO buzzer, and a filesystem-backed session
// file. One file per build tag, nothing upstream importing "machine"
// directly.
func newPorts(cfg config.Config) orchestrator.Ports {
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	actuators := hwio.NewPCA9685Actuators(pca9685.New(i2c, machine.NoPin), fanChannel, servoChannel)

	pinBuzzer.Configure(machine.PinConfig{Mode: machine.PinOutput})
	buzzer := hwio.NewGPIOBuzzer(pinBuzzer)

	adcPitPin.Configure(machine.ADCConfig{})
	adcMeat1Pin.Configure(machine.ADCConfig{})
	adcMeat2Pin.Configure(machine.ADCConfig{})
	adc := hwio.NewMultiADC(adcPitPin, adcMeat1Pin, adcMeat2Pin)

	storage := hwio.NewAferoStorage(afero.NewOsFs())

	return orchestrator.Ports{
		ADC:    adc,
		Fan:    actuators,
		Damper: actuators,
		Buzzer: buzzer,
		Store:  storage,
	}
}
