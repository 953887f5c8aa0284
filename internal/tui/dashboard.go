package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/services"
	"github.com/kelsos/comet-dash/internal/tx"
)

// Service is what the dashboard needs from services.PoolService
type Service interface {
	Dashboard() services.Dashboard
	LoadWallet(ctx context.Context, symbol string) (models.WalletData, error)
	NewFlow(hooks services.Hooks) *tx.Flow
	Submit(ctx context.Context, flow *tx.Flow, req tx.Request) (tx.Result, error)
	Reload()
}

var _ Service = (*services.PoolService)(nil)

// sender forwards messages from background goroutines to the program
type sender struct {
	program *tea.Program
}

func (s *sender) Send(msg tea.Msg) {
	if s != nil && s.program != nil {
		s.program.Send(msg)
	}
}

// DashboardMsg carries a fresh snapshot from the poller
type DashboardMsg struct {
	Dashboard services.Dashboard
}

type LogMessage struct {
	Message string
}

type Model struct {
	svc   Service
	send  *sender
	dash  services.Dashboard
	rows  []string
	modal *Modal

	cursor   int
	logs     []string
	spinner  spinner.Model
	bar      progress.Model
	width    int
	height   int
	quitting bool
}

func NewModel(svc Service, send *sender) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	dash := svc.Dashboard()
	rows := []string{dash.Pool.BaseToken.Symbol}
	for _, asset := range dash.Pool.AssetConfigs {
		rows = append(rows, asset.Symbol)
	}

	return Model{
		svc:     svc,
		send:    send,
		dash:    dash,
		rows:    rows,
		spinner: sp,
		bar:     progress.New(progress.WithoutPercentage()),
		width:   100,
		height:  30,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.modal != nil {
			return m.updateModal(msg)
		}
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width-30)

	case DashboardMsg:
		m.dash = msg.Dashboard

	case LogMessage:
		m = m.addLog(msg.Message)

	case closeModalMsg:
		if m.modal != nil && m.modal.flow == msg.flow {
			m.modal = nil
			m = m.addLog("Transaction complete, data reloaded")
		}

	case submitDoneMsg:
		if msg.err != nil {
			m = m.addLog("Submission failed: " + tx.FormatError(msg.err))
		}
		if m.modal != nil {
			return m.updateModal(msg)
		}

	case walletMsg, flowStateMsg:
		if m.modal != nil {
			return m.updateModal(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.modal != nil {
			m.modal.spinner = m.spinner
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.dash)
	if closed {
		m.modal = nil
	} else {
		m.modal = &modal
	}
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "r":
		m.svc.Reload()
		m = m.addLog("Reload requested")
	case "enter":
		modal, cmd := NewModal(m.svc, m.send, m.dash, m.rows[m.cursor])
		modal.spinner = m.spinner
		m.modal = &modal
		return m, cmd
	}
	return m, nil
}

func (m Model) addLog(message string) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
	if len(m.logs) > 5 {
		m.logs = m.logs[len(m.logs)-5:]
	}
	return m
}

func (m Model) loading() string {
	return m.spinner.View()
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	if m.modal != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modal.View(m.dash))
	}

	var s strings.Builder

	title := fmt.Sprintf("Comet Dashboard · %s", m.dash.Pool.Name)
	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n")

	account := m.dash.Account.Hex()
	if m.dash.ReadOnly {
		account += " (read-only)"
	}
	s.WriteString(mutedStyle.Render("Account: " + account))
	s.WriteString("\n\n")

	s.WriteString(m.statsBar())
	s.WriteString("\n")
	s.WriteString(m.baseSection())
	s.WriteString("\n")
	s.WriteString(m.collateralSection())
	s.WriteString("\n")
	s.WriteString(m.ratioBar())
	s.WriteString("\n")

	if len(m.logs) > 0 {
		s.WriteString(mutedStyle.Render(strings.Join(m.logs, "\n")))
		s.WriteString("\n\n")
	}

	s.WriteString(footerStyle.Render("↑/↓ select · enter open · r reload · q quit"))
	return s.String()
}

func (m Model) statsBar() string {
	if !m.dash.MetricsReady {
		return sectionStyle.Render(m.loading() + " Loading pool totals")
	}
	metrics := m.dash.Metrics
	line := fmt.Sprintf("Total Supply %s   Total Borrow %s   Total Collateral %s   Utilization %s",
		usd(metrics.TotalSupplyUSD),
		usd(metrics.TotalBorrowUSD),
		usd(metrics.TotalCollateralUSD),
		percent(m.dash.Totals.Utilization.Mul(decimal.NewFromInt(100))))
	return sectionStyle.Render(line)
}

func (m Model) cursorMark(i int, text string) string {
	if i == m.cursor {
		return selectedStyle.Render("› " + text)
	}
	return "  " + text
}

func (m Model) baseSection() string {
	base := m.dash.Pool.BaseToken
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%-10s %12s %18s %12s %18s %20s\n", "Base", "Supply APR", "Your Supply", "Borrow APR", "Your Borrow", "Available"))

	symbol := assetStyle(base.Color).Render(fmt.Sprintf("%-8s", base.Symbol))
	if !m.dash.BaseLoaded {
		s.WriteString(m.cursorMark(0, symbol+" "+m.loading()))
		return sectionStyle.Render(s.String())
	}

	data := m.dash.Base
	available := m.loading()
	if data.AvailableToBorrow.Valid {
		available = tokenAmount(data.AvailableToBorrow.Decimal, "")
	}
	line := fmt.Sprintf("%s %12s %18s %12s %18s %20s",
		symbol,
		percent(models.OrZero(data.SupplyAPR)),
		tokenAmount(models.OrZero(data.YourSupply), ""),
		percent(models.OrZero(data.BorrowAPR)),
		tokenAmount(models.OrZero(data.YourBorrow), ""),
		available)
	s.WriteString(m.cursorMark(0, line))
	return sectionStyle.Render(s.String())
}

func (m Model) collateralSection() string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%-10s %14s %18s %18s %10s %10s", "Collateral", "Price", "Your Supply", "Wallet", "Borrow CF", "Liq. CF"))

	for i, asset := range m.dash.Pool.AssetConfigs {
		s.WriteString("\n")
		symbol := assetStyle(asset.Color).Render(fmt.Sprintf("%-8s", asset.Symbol))
		data, ok := m.dash.Collaterals[asset.Symbol]
		if !m.dash.CollateralsLoaded || !ok || !m.dash.PricesLoaded {
			s.WriteString(m.cursorMark(i+1, symbol+" "+m.loading()))
			continue
		}
		line := fmt.Sprintf("%s %14s %18s %18s %9.1f%% %9.1f%%",
			symbol,
			usd(m.dash.Prices.CollateralPrice(asset.Symbol)),
			tokenAmount(models.OrZero(data.YourSupply), ""),
			tokenAmount(models.OrZero(data.WalletBalance), ""),
			asset.BorrowCollateralFactor,
			asset.LiquidateCollateralFactor)
		s.WriteString(m.cursorMark(i+1, line))
	}
	return sectionStyle.Render(s.String())
}

func (m Model) ratioBar() string {
	if !m.dash.SummaryReady {
		return sectionStyle.Render(m.loading() + " Loading position")
	}

	summary := m.dash.Summary
	pct := summary.LiquidationPercentage
	fill := pct / 100
	if fill > 1 {
		fill = 1
	}

	color := tierColor(m.dash.Tier())
	bar := m.bar
	bar.FullColor = string(color)

	var s strings.Builder
	s.WriteString(fmt.Sprintf("Liquidation limit: %s of %s\n", usd(summary.YourBorrowUSD), usd(summary.LiquidationPointUSD)))
	s.WriteString(bar.ViewAs(fill))
	s.WriteString(" ")
	s.WriteString(lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%.0f%% (%s)", pct, m.dash.Tier())))
	return sectionStyle.Render(s.String())
}
