package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/models"
	"github.com/kelsos/comet-dash/internal/services"
	"github.com/kelsos/comet-dash/internal/tx"
)

const walletTimeout = 30 * time.Second

type walletMsg struct {
	symbol string
	data   models.WalletData
	err    error
}

// flowStateMsg, submitDoneMsg and closeModalMsg carry the flow they came
// from so messages from a modal that was already closed are dropped
type flowStateMsg struct {
	flow    *tx.Flow
	state   tx.State
	message string
}

type submitDoneMsg struct {
	flow   *tx.Flow
	result tx.Result
	err    error
}

type closeModalMsg struct {
	flow *tx.Flow
}

// Modal is one open amount-entry session for an asset
type Modal struct {
	svc   Service
	token models.Token
	base  bool
	kinds []action.Kind
	tab   int

	input  textinput.Model
	entry  *action.Entry
	wallet models.WalletData

	flow    *tx.Flow
	state   tx.State
	message string
	spinner spinner.Model
}

func NewModal(svc Service, send *sender, dash services.Dashboard, symbol string) (Modal, tea.Cmd) {
	token, _ := dash.Pool.Asset(symbol)
	base := dash.Pool.IsBase(symbol)

	input := textinput.New()
	input.Placeholder = "0.0"
	input.Prompt = "Amount: "
	input.CharLimit = 40
	input.Focus()

	var flow *tx.Flow
	flow = svc.NewFlow(services.Hooks{
		Close: func() { send.Send(closeModalMsg{flow: flow}) },
		Observer: func(state tx.State, message string) {
			send.Send(flowStateMsg{flow: flow, state: state, message: message})
		},
	})

	m := Modal{
		svc:    svc,
		token:  token,
		base:   base,
		kinds:  action.KindsFor(base),
		input:  input,
		entry:  action.NewEntry(),
		wallet: models.WalletData{Symbol: token.Symbol},
		flow:   flow,
	}
	return m, tea.Batch(textinput.Blink, m.loadWallet())
}

func (m Modal) loadWallet() tea.Cmd {
	svc, symbol := m.svc, m.token.Symbol
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), walletTimeout)
		defer cancel()
		data, err := svc.LoadWallet(ctx, symbol)
		return walletMsg{symbol: symbol, data: data, err: err}
	}
}

func (m Modal) kind() action.Kind {
	return m.kinds[m.tab]
}

func (m Modal) inProgress() bool {
	switch m.state {
	case tx.ApproveExecuting, tx.ApproveInProgress, tx.WaitingForTransactions:
		return true
	}
	return m.flow.InFlight()
}

// Update handles one message. closed reports that the modal was dismissed.
func (m Modal) Update(msg tea.Msg, dash services.Dashboard) (modal Modal, cmd tea.Cmd, closed bool) {
	switch msg := msg.(type) {
	case walletMsg:
		if strings.EqualFold(msg.symbol, m.token.Symbol) {
			m.wallet = msg.data
		}
		return m, nil, false

	case flowStateMsg:
		if msg.flow == m.flow {
			m.state, m.message = msg.state, msg.message
		}
		return m, nil, false

	case submitDoneMsg:
		if msg.flow == m.flow && msg.err == nil {
			// approval changes the allowance
			return m, m.loadWallet(), false
		}
		return m, nil, false

	case tea.KeyMsg:
		return m.handleKey(msg, dash)
	}
	return m, nil, false
}

func (m Modal) handleKey(msg tea.KeyMsg, dash services.Dashboard) (Modal, tea.Cmd, bool) {
	if m.inProgress() {
		return m, nil, false
	}

	switch msg.String() {
	case "esc":
		return m, nil, true

	case "tab":
		m.tab = (m.tab + 1) % len(m.kinds)
		m.flow.Edit()
		return m, nil, false

	case "shift+tab":
		m.tab = (m.tab + len(m.kinds) - 1) % len(m.kinds)
		m.flow.Edit()
		return m, nil, false

	case "ctrl+x", "m":
		maxValue := action.MaxValue(m.kind(), dash.Balances(m.token.Symbol, m.wallet))
		if maxValue.Valid {
			m.entry.SetMax(maxValue.Decimal)
			m.input.SetValue(m.entry.Text())
			m.input.CursorEnd()
			m.flow.Edit()
		}
		return m, nil, false

	case "enter":
		// the error screen is dismissed by editing the amount
		if m.state == tx.Error {
			return m, nil, false
		}
		return m, m.submit(), false
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != prev {
		if m.entry.Update(value) {
			m.flow.Edit()
		} else {
			m.input.SetValue(prev)
		}
	}
	return m, cmd, false
}

func (m Modal) submit() tea.Cmd {
	if m.entry.SubmitDisabled(m.token.Decimals, m.flow.InFlight()) {
		return nil
	}
	amount, _ := m.entry.Amount()
	req := tx.Request{Kind: m.kind(), Token: m.token, Amount: amount}
	svc, flow := m.svc, m.flow
	return func() tea.Msg {
		result, err := svc.Submit(context.Background(), flow, req)
		return submitDoneMsg{flow: flow, result: result, err: err}
	}
}

func (m Modal) View(dash services.Dashboard) string {
	var s strings.Builder

	title := assetStyle(m.token.Color).Render(m.token.Symbol) + mutedStyle.Render(" · "+dash.Pool.Name)
	s.WriteString(title)
	s.WriteString("\n\n")

	switch m.state {
	case tx.ApproveExecuting, tx.ApproveInProgress, tx.WaitingForTransactions:
		s.WriteString(m.progressView())
	case tx.Error:
		s.WriteString(m.errorView())
	default:
		s.WriteString(m.formView(dash))
	}
	return modalStyle.Render(s.String())
}

func (m Modal) progressView() string {
	var text string
	switch m.state {
	case tx.ApproveExecuting:
		text = "Check your wallet... approving " + m.token.Symbol
	case tx.ApproveInProgress:
		text = "Approve underway, waiting for it to be mined"
	default:
		text = "Waiting for transactions. Check your wallet..."
	}
	return m.spinner.View() + " " + text + "\n"
}

func (m Modal) errorView() string {
	var s strings.Builder
	s.WriteString(errorStyle.Render("⚠ Transaction failed"))
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Width(60).Render(m.message))
	s.WriteString("\n\n")
	s.WriteString(footerStyle.Render("edit the amount to retry · esc close"))
	return s.String()
}

func (m Modal) formView(dash services.Dashboard) string {
	balances := dash.Balances(m.token.Symbol, m.wallet)
	var s strings.Builder

	tabs := make([]string, len(m.kinds))
	for i, kind := range m.kinds {
		label := action.Label(kind, balances)
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n")

	wallet := m.spinner.View()
	if m.wallet.Balance.Valid {
		wallet = tokenAmount(m.wallet.Balance.Decimal, m.token.Symbol)
	}
	s.WriteString(mutedStyle.Render("Wallet: ") + wallet)
	if maxValue := action.MaxValue(m.kind(), balances); maxValue.Valid {
		s.WriteString(mutedStyle.Render("   Max: ") + tokenAmount(maxValue.Decimal, m.token.Symbol))
	}
	s.WriteString("\n\n")

	amount, _ := m.entry.Amount()
	if dash.SummaryReady {
		for _, row := range action.Project(m.kind(), balances, amount) {
			current, projected := rowText(row, m.token.Symbol)
			line := fmt.Sprintf("%-22s %s", row.Label, current)
			if projected != "" {
				line += accentStyle.Render(" → " + projected)
			}
			s.WriteString(line)
			s.WriteString("\n")
		}
	} else {
		s.WriteString(m.spinner.View() + " Loading position\n")
	}
	s.WriteString("\n")

	button := buttonStyle
	if m.entry.SubmitDisabled(m.token.Decimals, m.flow.InFlight()) {
		button = disabledButtonStyle
	}
	s.WriteString(button.Render(m.buttonLabel(balances, amount)))
	s.WriteString("\n\n")
	s.WriteString(footerStyle.Render("tab switch · m max · enter submit · esc close"))
	return s.String()
}

// buttonLabel names the next transaction the submit button will send
func (m Modal) buttonLabel(balances action.Balances, amount decimal.Decimal) string {
	if m.kind().SupplyType() && m.wallet.Allowance.Valid && m.wallet.Allowance.Decimal.LessThan(amount) {
		return "Execute Approve"
	}
	return "Submit " + action.Label(m.kind(), balances)
}
