package infra

import (
	"os"
	"sync"
)

// mockProcessManager is a test double for ProcessManager
type mockProcessManager struct {
	byName  map[string][]int
	findErr error
	self    int
	exited  map[int]bool
}

func newMockProcessManager() *mockProcessManager {
	return &mockProcessManager{
		byName: make(map[string][]int),
		self:   os.Getpid(),
	}
}

func (m *mockProcessManager) FindByName(pattern string) ([]int, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byName[pattern], nil
}

func (m *mockProcessManager) IsRunning(pid int) bool {
	if m.exited[pid] {
		return false
	}
	for _, pids := range m.byName {
		for _, p := range pids {
			if p == pid {
				return true
			}
		}
	}
	return false
}

func (m *mockProcessManager) GetCurrentPID() int {
	return m.self
}

// mockShell is a test double for ShellController
type mockShell struct {
	mu      sync.Mutex
	err     error
	applied []bool
}

func (m *mockShell) Apply(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, enabled)
	return m.err
}

func (m *mockShell) Available() bool {
	return m.err == nil
}

func (m *mockShell) Applied() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.applied...)
}
