package wm

import "github.com/lmburns/lwm/internal/platform"

// Reconcile compares the model with the server. Clients whose window no
// longer exists are dropped and viewable top-level windows the manager
// never saw a map request for are adopted.
func (m *Manager) Reconcile() (adopted, dropped int) {
	for w := range m.clients {
		if _, err := m.backend.QueryGeometry(w); err != nil {
			m.log.Info("dropping vanished window", "window", w, "error", err)
			m.unmanage(w)
			dropped++
		}
	}

	wins, err := m.backend.ExistingWindows()
	if err != nil {
		m.log.Warn("failed to list windows", "error", err)
		return adopted, dropped
	}
	for _, w := range wins {
		if m.known(w) {
			continue
		}
		m.log.Info("adopting missed window", "window", w)
		m.manage(w, true)
		adopted++
	}
	return adopted, dropped
}

func (m *Manager) known(w platform.Window) bool {
	if _, ok := m.clients[w]; ok {
		return true
	}
	_, ok := m.unmanaged[w]
	return ok
}
