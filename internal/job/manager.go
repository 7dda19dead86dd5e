package job

import (
	"log"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine           *cron.Cron
	counterReconcile *CounterReconcileJob
}

func NewManager(counterReconcile *CounterReconcileJob) *Manager {
	return &Manager{
		engine:           cron.New(),
		counterReconcile: counterReconcile,
	}
}

func (m *Manager) RegisterJobs() error {
	if _, err := m.engine.AddJob("@every 10m", m.counterReconcile); err != nil {
		return err
	}
	return nil
}

func (m *Manager) Start() {
	log.Printf("Background job engine started")
	m.engine.Start()
}

func (m *Manager) Stop() {
	log.Printf("Background job engine stopped")
	m.engine.Stop()
}
