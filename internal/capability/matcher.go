package capability

import (
	"sort"
	"sync"

	"github.com/vk/dispatchgrid/internal/model"
)

// Taxonomy maps a skill name to the capabilities having that skill implies.
// It is deployment data, loaded from configuration, never hard-coded here.
type Taxonomy map[string][]string

// Matcher is the capability registry and matching engine. All methods are
// safe for concurrent use; registration may race with scheduling cycles.
type Matcher struct {
	mu       sync.RWMutex
	agents   map[string]*model.AgentInfo
	taxonomy Taxonomy
}

// NewMatcher creates a Matcher with the given skill taxonomy. A nil taxonomy
// is valid and simply implies no capabilities from any skill.
func NewMatcher(taxonomy Taxonomy) *Matcher {
	return &Matcher{
		agents:   make(map[string]*model.AgentInfo),
		taxonomy: taxonomy,
	}
}

// RegisterAgent stores or replaces the agent's registration. The effective
// capability set is the union of the explicit capabilities and every
// capability implied by the agent's skills. Re-registration replaces the
// previous sets wholesale, never appends.
func (m *Matcher) RegisterAgent(roleID string, level model.Level, capabilities, skills []string) {
	info := &model.AgentInfo{
		RoleID:       roleID,
		Level:        level,
		Capabilities: make(map[string]struct{}, len(capabilities)),
		Skills:       make(map[string]struct{}, len(skills)),
	}
	for _, c := range capabilities {
		info.Capabilities[c] = struct{}{}
	}
	for _, s := range skills {
		info.Skills[s] = struct{}{}
		for _, implied := range m.taxonomy[s] {
			info.Capabilities[implied] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[roleID] = info
}

// FindCapableAgents returns the role IDs qualified to perform work with the
// given requirements. An agent qualifies iff it holds every required
// capability, every required skill, and (when targetLevel is non-empty)
// matches the level exactly. The three conditions are AND-combined hard
// filters. An empty result is a normal outcome, not an error.
//
// The result is ordered by descending capability score, then role ID, so
// downstream load ranking sees the best-covering agents first and its
// stable-sort ties stay meaningful.
func (m *Matcher) FindCapableAgents(requiredCapabilities, requiredSkills []string, targetLevel model.Level) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for roleID, info := range m.agents {
		if targetLevel != "" && info.Level != targetLevel {
			continue
		}
		if !containsAll(info.Capabilities, requiredCapabilities) {
			continue
		}
		if !containsAll(info.Skills, requiredSkills) {
			continue
		}
		out = append(out, roleID)
	}

	sort.Slice(out, func(i, j int) bool {
		si := m.scoreLocked(out[i], requiredCapabilities)
		sj := m.scoreLocked(out[j], requiredCapabilities)
		if si != sj {
			return si > sj
		}
		return out[i] < out[j]
	})
	return out
}

// Score reports how much of the required capability set the agent covers,
// in [0,1]. An empty requirement is a perfect match (1.0). An unregistered
// role ID scores 0 against any non-empty requirement. The score is for
// ranking and display only; admission is FindCapableAgents.
func (m *Matcher) Score(roleID string, requiredCapabilities []string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scoreLocked(roleID, requiredCapabilities)
}

func (m *Matcher) scoreLocked(roleID string, requiredCapabilities []string) float64 {
	if len(requiredCapabilities) == 0 {
		return 1.0
	}
	info, ok := m.agents[roleID]
	if !ok {
		return 0
	}
	matched := 0
	for _, c := range requiredCapabilities {
		if _, has := info.Capabilities[c]; has {
			matched++
		}
	}
	return float64(matched) / float64(len(requiredCapabilities))
}

// Agent returns a copy-safe view of the registered agent, or nil when the
// role ID is unknown. Callers must not mutate the returned sets.
func (m *Matcher) Agent(roleID string) *model.AgentInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.agents[roleID]
}

// Roster returns every registered role ID, sorted.
func (m *Matcher) Roster() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.agents))
	for roleID := range m.agents {
		out = append(out, roleID)
	}
	sort.Strings(out)
	return out
}

// containsAll reports whether every element of want is present in have. An
// unregistered agent has empty sets, so it never matches a non-empty want.
func containsAll(have map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}
