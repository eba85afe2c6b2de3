package policy

import (
	"fmt"
	"sort"

	"github.com/eliteGoblin/focusd/hidebar/internal/domain"
)

// Registry holds the restoration policies by name.
// A Registry is not modified after it is handed to the orchestrator;
// config reloads build a new one.
type Registry struct {
	policies map[string]Restoration
}

// NewRegistry creates a registry with all default policies.
func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]Restoration),
	}

	r.Register(Normal())
	r.Register(InputSwitch())
	r.Register(ScreenBlankRecovery())
	r.Register(Direct())

	return r
}

// NewRegistryWithPolicies creates a registry from the defaults overridden by
// the given policies.
func NewRegistryWithPolicies(policies ...Restoration) (*Registry, error) {
	r := NewRegistry()
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}

// Register adds or replaces a policy.
func (r *Registry) Register(p Restoration) {
	r.policies[p.Name] = p
}

// Get returns a policy by name.
func (r *Registry) Get(name string) (Restoration, bool) {
	p, ok := r.policies[name]
	return p, ok
}

// List returns all policy names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForClassification selects the schedule for a classified display trigger.
func (r *Registry) ForClassification(c domain.Classification) Restoration {
	switch c {
	case domain.ClassificationInputSwitch:
		return r.mustGet(NameInputSwitch, InputSwitch)
	case domain.ClassificationScreenBlankRecovery:
		return r.mustGet(NameScreenBlankRecovery, ScreenBlankRecovery)
	default:
		return r.mustGet(NameNormal, Normal)
	}
}

// ForDirect selects the schedule for triggers that bypass the classifier.
func (r *Registry) ForDirect() Restoration {
	return r.mustGet(NameDirect, Direct)
}

func (r *Registry) mustGet(name string, fallback func() Restoration) Restoration {
	if p, ok := r.Get(name); ok {
		return p
	}
	return fallback()
}

// String lists the registered schedules, for debug logs.
func (r *Registry) String() string {
	return fmt.Sprintf("policies%v", r.List())
}
