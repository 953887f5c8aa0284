package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/services"
)

// Monitor runs the dashboard program against a pool service
type Monitor struct {
	service *services.PoolService
	send    *sender
}

func NewMonitor(service *services.PoolService) *Monitor {
	return &Monitor{
		service: service,
		send:    &sender{},
	}
}

// Run starts polling and blocks until the user quits
func (m *Monitor) Run(ctx context.Context) error {
	model := NewModel(m.service, m.send)
	m.send.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	m.service.OnUpdate(func(source string, err error) {
		if err != nil {
			m.AddLog(fmt.Sprintf("Failed to load %s", source))
		}
		m.send.Send(DashboardMsg{Dashboard: m.service.Dashboard()})
	})
	m.service.Start(ctx)
	defer m.service.Cleanup()

	logger.Info("Dashboard started for %s", m.service.Pool().Name)
	if _, err := m.send.program.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

func (m *Monitor) AddLog(message string) {
	m.send.Send(LogMessage{Message: message})
}
