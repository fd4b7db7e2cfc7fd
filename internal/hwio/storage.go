// Package hwio holds the concrete, hardware-facing implementations of the
// ports capabilities: a PCA9685 I2C PWM-driver-chip actuator pair (fan +
// damper servo) and an afero-backed persistent Storage. Outside this
// package, only the build-tagged platform_*.go wiring files of package
// main use tinygo.org/x/drivers or afero's OS filesystem backend directly.
package hwio

import (
	"os"

	"github.com/spf13/afero"
)

// AferoStorage adapts an afero.Fs to the ports.Storage capability. The real
// target wires afero.NewOsFs(); host tests wire afero.NewMemMapFs().
type AferoStorage struct {
	FS afero.Fs
}

func NewAferoStorage(fs afero.Fs) *AferoStorage { return &AferoStorage{FS: fs} }

func (s *AferoStorage) AppendFile(path string, b []byte) (int, error) {
	f, err := s.FS.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(b)
}

func (s *AferoStorage) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.FS, path)
}

func (s *AferoStorage) Remove(path string) error {
	err := s.FS.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *AferoStorage) Size(path string) (int64, error) {
	info, err := s.FS.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
