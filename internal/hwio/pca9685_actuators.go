// PCA9685-backed fan PWM and damper servo actuators. On the real hardware
// both the blower fan and the butterfly-damper servo hang off the same
// I2C PWM-driver chip, wrapped behind the same two small capability
// interfaces the rest of the control loop depends on.
package hwio

import (
	"time"

	"tinygo.org/x/drivers/pca9685"
)

const (
	pca9685PWMFreqHz = 25000 // fan carrier, spec.md §4.4
	pca9685ServoHz   = 50    // damper servo cadence, spec.md §4.5
)

// PCA9685Actuators drives the fan (8-bit duty, channel FanChannel) and the
// damper servo (pulse-width in microseconds, channel ServoChannel) from a
// single PCA9685 device, satisfying ports.PWMPort and ports.ServoPort.
type PCA9685Actuators struct {
	dev          pca9685.Device
	fanChannel   uint8
	servoChannel uint8
}

// NewPCA9685Actuators configures the PCA9685 for a dual fan+servo setup.
// dev is a PCA9685 device the caller has built over an I2C bus already
// configured for the target board; its Configure method is called here.
func NewPCA9685Actuators(dev pca9685.Device, fanChannel, servoChannel uint8) *PCA9685Actuators {
	dev.Configure()
	return &PCA9685Actuators{dev: dev, fanChannel: fanChannel, servoChannel: servoChannel}
}

// WritePWM sets the fan duty (0..255) as a 12-bit PCA9685 "on" count.
func (a *PCA9685Actuators) WritePWM(duty uint8) {
	level := uint16(duty) * 16 // 0..255 -> 0..4080, fits the chip's 12-bit counter
	a.dev.SetPWM(a.fanChannel, 0, level)
}

// WriteServoUs sets the damper servo pulse width directly in microseconds,
// converting to the chip's 4096-tick-per-period counter at 50 Hz.
func (a *PCA9685Actuators) WriteServoUs(us uint16) {
	const periodUs = uint32(time.Second / pca9685ServoHz / time.Microsecond)
	ticks := uint16((uint32(us) * 4096) / periodUs)
	a.dev.SetPWM(a.servoChannel, 0, ticks)
}
