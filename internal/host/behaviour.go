package host

import "time"

// Behaviour is host-side logic updated once per fixed step before the world
// ticks. Start runs before the first Update.
type Behaviour interface {
	Start()
	Update(dt time.Duration)
}

type behaviourWrapper struct {
	behaviour Behaviour
	started   bool
}

type BehaviourManager struct {
	behaviours []behaviourWrapper
}

func NewBehaviourManager() *BehaviourManager {
	return &BehaviourManager{}
}

func (m *BehaviourManager) Add(b Behaviour) {
	m.behaviours = append(m.behaviours, behaviourWrapper{behaviour: b})
}

func (m *BehaviourManager) Remove(b Behaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].behaviour == b {
			// Keep update order stable.
			m.behaviours = append(m.behaviours[:i], m.behaviours[i+1:]...)
			return
		}
	}
}

func (m *BehaviourManager) Len() int { return len(m.behaviours) }

func (m *BehaviourManager) UpdateAll(dt time.Duration) {
	for i := range m.behaviours {
		if !m.behaviours[i].started {
			m.behaviours[i].behaviour.Start()
			m.behaviours[i].started = true
		}
		m.behaviours[i].behaviour.Update(dt)
	}
}
