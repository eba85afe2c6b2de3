// Package infra implements the platform adapters (registry, shell, windows, display, startup).
package infra

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// Layout of the auto-hide flag inside the StuckRects3 "Settings" blob.
const (
	autoHideByte   = 8
	autoHideMask   = 0x08
	minSettingsLen = autoHideByte + 1
)

// BinaryValue is one raw binary configuration value.
type BinaryValue interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// AutoHideBit extracts the auto-hide flag from a settings blob.
func AutoHideBit(data []byte) (bool, error) {
	if len(data) < minSettingsLen {
		return false, errors.Wrapf(domain.ErrStoreUnavailable, "settings blob is %d bytes, need %d", len(data), minSettingsLen)
	}
	return data[autoHideByte]&autoHideMask != 0, nil
}

// WithAutoHideBit returns a copy of data with only the auto-hide bit changed.
func WithAutoHideBit(data []byte, enabled bool) ([]byte, error) {
	if len(data) < minSettingsLen {
		return nil, errors.Wrapf(domain.ErrStoreUnavailable, "settings blob is %d bytes, need %d", len(data), minSettingsLen)
	}
	out := make([]byte, len(data))
	copy(out, data)
	if enabled {
		out[autoHideByte] |= autoHideMask
	} else {
		out[autoHideByte] &^= autoHideMask
	}
	return out, nil
}

// PreferenceStoreImpl implements domain.PreferenceStore over a BinaryValue.
// The read-modify-write is serialized within this process only.
type PreferenceStoreImpl struct {
	mu     sync.Mutex
	value  BinaryValue
	shell  domain.ShellController
	logger *zap.Logger
}

// NewPreferenceStore creates a store that applies every successful write to shell.
func NewPreferenceStore(value BinaryValue, shell domain.ShellController, logger *zap.Logger) domain.PreferenceStore {
	return &PreferenceStoreImpl{
		value:  value,
		shell:  shell,
		logger: logger,
	}
}

// Get returns the persisted flag.
func (s *PreferenceStoreImpl) Get() (bool, error) {
	data, err := s.value.Read()
	if err != nil {
		return false, errors.Wrap(domain.ErrStoreUnavailable, err.Error())
	}
	return AutoHideBit(data)
}

// Set flips the auto-hide bit, preserving every other bit, then applies it to the shell.
func (s *PreferenceStoreImpl) Set(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(enabled)
}

// Toggle flips the flag and returns the new value.
func (s *PreferenceStoreImpl) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.value.Read()
	if err != nil {
		return false, errors.Wrap(domain.ErrStoreUnavailable, err.Error())
	}
	current, err := AutoHideBit(data)
	if err != nil {
		return false, err
	}
	next := !current
	if err := s.setLocked(next); err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return current, err
		}
		// Written, only the shell refresh failed.
		return next, err
	}
	return next, nil
}

func (s *PreferenceStoreImpl) setLocked(enabled bool) error {
	data, err := s.value.Read()
	if err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, err.Error())
	}
	updated, err := WithAutoHideBit(data, enabled)
	if err != nil {
		return err
	}
	if err := s.value.Write(updated); err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, err.Error())
	}

	s.logger.Info("auto-hide preference written", zap.Bool("enabled", enabled))

	if err := s.shell.Apply(enabled); err != nil {
		return errors.Wrap(err, "preference saved but shell refresh failed")
	}
	return nil
}

// MemoryValue is an in-process BinaryValue.
type MemoryValue struct {
	mu   sync.Mutex
	data []byte
	err  error
}

// NewMemoryValue creates a value holding a copy of data.
func NewMemoryValue(data []byte) *MemoryValue {
	v := &MemoryValue{}
	v.data = append([]byte(nil), data...)
	return v
}

// Read returns a copy of the stored bytes.
func (v *MemoryValue) Read() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	if v.data == nil {
		return nil, errors.New("value not found")
	}
	return append([]byte(nil), v.data...), nil
}

// Write replaces the stored bytes.
func (v *MemoryValue) Write(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return v.err
	}
	v.data = append([]byte(nil), data...)
	return nil
}

// Bytes returns a copy of the stored bytes, ignoring any injected error.
func (v *MemoryValue) Bytes() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.data...)
}

// Fail makes every later Read and Write return err (nil clears it).
func (v *MemoryValue) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

// Ensure implementations satisfy their interfaces.
var (
	_ domain.PreferenceStore = (*PreferenceStoreImpl)(nil)
	_ BinaryValue            = (*MemoryValue)(nil)
)
