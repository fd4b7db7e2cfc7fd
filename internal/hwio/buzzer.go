package hwio

// TogglePin is the minimal GPIO capability a buzzer driver needs; it is
// satisfied directly by a TinyGo machine.Pin on the real target without
// this package importing the board-specific machine package itself.
type TogglePin interface {
	High()
	Low()
}

// GPIOBuzzer drives a piezo buzzer from a single GPIO pin. Tone frequency
// is configured but not physically synthesized on a plain digital pin;
// on hardware that needs an actual audible tone, wire the PCA9685 PWM
// channel instead. This driver exists for boards where the buzzer module
// has its own built-in oscillator and only needs on/off.
type GPIOBuzzer struct {
	pin TogglePin
}

func NewGPIOBuzzer(pin TogglePin) *GPIOBuzzer { return &GPIOBuzzer{pin: pin} }

func (b *GPIOBuzzer) ToneOn(freqHz uint32) { b.pin.High() }
func (b *GPIOBuzzer) ToneOff()             { b.pin.Low() }
