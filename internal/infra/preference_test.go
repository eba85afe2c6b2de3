package infra

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// A StuckRects3 blob as written by the shell with auto-hide off.
var sampleSettings = []byte{
	0x30, 0x00, 0x00, 0x00, 0xfe, 0xff, 0xff, 0xff,
	0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00,
	0x3e, 0x00, 0x00, 0x00, 0x2e, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x52, 0x04, 0x00, 0x00,
	0x80, 0x07, 0x00, 0x00, 0x80, 0x04, 0x00, 0x00,
	0x60, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
}

func newTestStore(data []byte) (domain.PreferenceStore, *MemoryValue, *mockShell) {
	value := NewMemoryValue(data)
	shell := &mockShell{}
	return NewPreferenceStore(value, shell, zap.NewNop()), value, shell
}

func TestAutoHideBit(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    bool
		wantErr bool
	}{
		{"off", sampleSettings, false, false},
		{"on", []byte{0, 0, 0, 0, 0, 0, 0, 0, 0x0b}, true, false},
		{"other bits only", []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xf7}, false, false},
		{"too short", []byte{0, 0, 0, 0, 0, 0, 0, 0}, false, true},
		{"empty", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AutoHideBit(tt.data)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithAutoHideBit_DoesNotMutateInput(t *testing.T) {
	in := append([]byte(nil), sampleSettings...)

	out, err := WithAutoHideBit(in, true)
	require.NoError(t, err)

	assert.Equal(t, sampleSettings, in)
	assert.Equal(t, byte(0x0a), out[8])
}

func TestPreferenceStore_SetThenGet(t *testing.T) {
	store, value, shell := newTestStore(sampleSettings)

	require.NoError(t, store.Set(true))
	got, err := store.Get()
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, byte(0x0a), value.Bytes()[8])

	require.NoError(t, store.Set(false))
	got, err = store.Get()
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, sampleSettings, value.Bytes())

	assert.Equal(t, []bool{true, false}, shell.Applied(), "every set refreshes the shell")
}

// TestPreferenceStore_BitPreservation checks that set(v) only ever touches bit 3 of byte 8.
func TestPreferenceStore_BitPreservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		blob := make([]byte, 9+rng.Intn(48))
		rng.Read(blob)
		v := rng.Intn(2) == 1

		store, value, _ := newTestStore(blob)
		require.NoError(t, store.Set(v))

		got, err := store.Get()
		require.NoError(t, err)
		assert.Equal(t, v, got)

		after := value.Bytes()
		require.Len(t, after, len(blob))
		for j := range blob {
			if j == 8 {
				assert.Equal(t, blob[j]&^0x08, after[j]&^0x08, "byte 8 changed outside bit 3")
				continue
			}
			assert.Equal(t, blob[j], after[j], "byte %d changed", j)
		}
	}
}

func TestPreferenceStore_Toggle(t *testing.T) {
	store, _, shell := newTestStore(sampleSettings)

	on, err := store.Toggle()
	require.NoError(t, err)
	assert.True(t, on)

	off, err := store.Toggle()
	require.NoError(t, err)
	assert.False(t, off)

	assert.Equal(t, []bool{true, false}, shell.Applied())
}

func TestPreferenceStore_Unavailable(t *testing.T) {
	t.Run("missing value", func(t *testing.T) {
		store, _, shell := newTestStore(nil)

		_, err := store.Get()
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
		assert.True(t, errors.Is(store.Set(true), domain.ErrStoreUnavailable))
		assert.Empty(t, shell.Applied(), "no refresh without a write")
	})

	t.Run("malformed value", func(t *testing.T) {
		store, value, _ := newTestStore([]byte{1, 2, 3})

		_, err := store.Toggle()
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
		assert.Equal(t, []byte{1, 2, 3}, value.Bytes(), "malformed blob is left alone")
	})

	t.Run("write fails", func(t *testing.T) {
		store, value, shell := newTestStore(sampleSettings)
		value.Fail(errors.New("access denied"))

		assert.True(t, errors.Is(store.Set(true), domain.ErrStoreUnavailable))
		assert.Empty(t, shell.Applied())
	})
}

func TestPreferenceStore_ShellFailureKeepsWrite(t *testing.T) {
	store, value, shell := newTestStore(sampleSettings)
	shell.err = domain.ErrShellUnavailable

	err := store.Set(true)

	assert.True(t, errors.Is(err, domain.ErrShellUnavailable))
	got, _ := AutoHideBit(value.Bytes())
	assert.True(t, got, "preference is persisted even when the shell is missing")
}

func TestPreferenceStore_ToggleReportsWrittenValueOnShellFailure(t *testing.T) {
	store, value, shell := newTestStore(sampleSettings)
	shell.err = domain.ErrShellUnavailable

	on, err := store.Toggle()

	assert.True(t, errors.Is(err, domain.ErrShellUnavailable))
	assert.True(t, on)
	got, _ := AutoHideBit(value.Bytes())
	assert.True(t, got)
}
