//go:build windows

package infra

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

// Per-user taskbar geometry and flags.
const (
	stuckRectsPath  = `Software\Microsoft\Windows\CurrentVersion\Explorer\StuckRects3`
	stuckRectsValue = "Settings"
)

// RegistryValue is a REG_BINARY value under HKEY_CURRENT_USER.
type RegistryValue struct {
	path string
	name string
}

// NewTaskbarSettingsValue returns the StuckRects3 settings blob.
func NewTaskbarSettingsValue() BinaryValue {
	return &RegistryValue{path: stuckRectsPath, name: stuckRectsValue}
}

// Read returns the raw value bytes.
func (v *RegistryValue) Read() ([]byte, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, v.path, registry.QUERY_VALUE)
	if err != nil {
		return nil, errors.Wrapf(err, "open HKCU\\%s", v.path)
	}
	defer key.Close()

	data, _, err := key.GetBinaryValue(v.name)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", v.name)
	}
	return data, nil
}

// Write replaces the value bytes.
func (v *RegistryValue) Write(data []byte) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, v.path, registry.SET_VALUE)
	if err != nil {
		return errors.Wrapf(err, "open HKCU\\%s", v.path)
	}
	defer key.Close()

	if err := key.SetBinaryValue(v.name, data); err != nil {
		return errors.Wrapf(err, "write %s", v.name)
	}
	return nil
}

// Ensure RegistryValue implements BinaryValue.
var _ BinaryValue = (*RegistryValue)(nil)
