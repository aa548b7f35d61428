// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	arbitrageApp "github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/business/arbitrage/domain"
	"github.com/fd1az/crossarb/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	scans      *components.ScansComponent
	executions *components.ExecutionsComponent
	keys       KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready        bool
	quitting     bool
	width        int
	height       int
	cycleCount   int
	lastCycle    time.Duration
	paperTrading bool
	lastUpdate   time.Time
	errors       []ErrorEntry // Persistent error panel (last 3)
	logs         []string     // Recent log messages

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time
}

// PaperTrading tells the dashboard to show the paper trading badge.
// Set before the program starts.
var PaperTrading bool

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		scans:        components.NewScansComponent(),
		executions:   components.NewExecutionsComponent(20),
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		paperTrading: PaperTrading,
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
		startupSteps: map[string]*StartupStep{
			"config":    {Name: "Loading configuration", Status: "pending"},
			"exchanges": {Name: "Connecting to exchanges", Status: "pending"},
			"scheduler": {Name: "Starting cycle scheduler", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		// Normal key handling
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.executions.Clear()
			return m, nil
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case CycleMsg:
		report := msg.Report
		rows := make([]components.ScanRow, 0, len(report.Results))
		for _, result := range report.Results {
			rows = append(rows, scanRow(result))
		}
		m.scans.Update(report.Number, rows)
		m.cycleCount = report.Number
		m.lastCycle = report.Duration
		m.lastUpdate = time.Now()
		m.startupComplete = true

	case ExecutionMsg:
		report := msg.Report
		m.executions.Add(components.ExecutionRow{
			Timestamp:  report.FinishedAt.Format("15:04:05"),
			Symbol:     report.Symbol.String(),
			Route:      report.Opportunity.Buy.ExchangeID + " → " + report.Opportunity.Sell.ExchangeID,
			Outcome:    string(report.Outcome),
			RealizedPL: report.RealizedPL,
			Completed:  report.Outcome == domain.OutcomeCompleted,
			Aborted:    report.Outcome.Aborted() || report.Outcome == domain.OutcomeSkippedPaperTrading,
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		allConnected := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				allConnected = false
				break
			}
		}
		if allConnected {
			m.startupComplete = true
		}
	}

	return m, nil
}

func scanRow(result arbitrageApp.ScanResult) components.ScanRow {
	row := components.ScanRow{
		Symbol: result.Symbol.String(),
		Status: "no data",
	}

	opp := result.Opportunity
	if opp == nil {
		return row
	}

	row.HasData = true
	row.BuyExchange = opp.Buy.ExchangeID
	row.BuyPrice = opp.Buy.Price
	row.SellExchange = opp.Sell.ExchangeID
	row.SellPrice = opp.Sell.Price
	row.NetProfitPct = opp.Profit.NetProfitPct

	switch opp.Classification {
	case domain.ClassificationExecutable:
		row.Status = "EXECUTABLE"
		row.Executable = true
	case domain.ClassificationLossAverting:
		row.Status = "LOSS SKIP"
		row.LossAverting = true
	default:
		row.Status = "neutral"
	}
	return row
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if m.cycleCount == 0 && !m.startupComplete {
			return m.renderStartupScreen()
		}
		m.phase = PhaseDashboard
		fallthrough
	case PhaseDashboard:
		// Continue to main dashboard
	}

	var b strings.Builder

	title := TitleStyle.Render(" ⇄ Cross-Exchange Arbitrage Bot ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.scans.View()
	rightCol := m.executions.View()

	// Side by side if enough width
	if m.width > 140 {
		left := BoxStyle.Width(2*m.width/3 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("q: quit • c: clear executions • e: clear errors"))

	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	goldStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	greenStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
    ██████╗██████╗  ██████╗ ███████╗███████╗ █████╗ ██████╗ ██████╗
   ██╔════╝██╔══██╗██╔═══██╗██╔════╝██╔════╝██╔══██╗██╔══██╗██╔══██╗
   ██║     ██████╔╝██║   ██║███████╗███████╗███████║██████╔╝██████╔╝
   ██║     ██╔══██╗██║   ██║╚════██║╚════██║██╔══██║██╔══██╗██╔══██╗
   ╚██████╗██║  ██║╚██████╔╝███████║███████║██║  ██║██║  ██║██████╔╝
    ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "         C R O S S - E X C H A N G E   A R B I T R A G E"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	tagline := "              💰  Let's make money  💰"
	sb.WriteString(goldStyle.Render(tagline))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	connectingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  ⇄ Cross-Exchange Arbitrage Bot"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	stepOrder := []string{"config", "exchanges", "scheduler"}
	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon = "✓"
			statusText = "Ready"
			style = successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon = spinners[idx]
			statusText = "Connecting..."
			style = connectingStyle
		case "failed":
			icon = "✗"
			statusText = "Failed"
			style = failedStyle
		default:
			icon = "○"
			statusText = "Pending"
			style = mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	sb.WriteString(mutedStyle.Render("  Waiting for first scan cycle..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.paperTrading {
		paperStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
		parts = append(parts, paperStyle.Render("📝 PAPER TRADING"))
	} else {
		liveStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		parts = append(parts, liveStyle.Render("● LIVE"))
	}

	parts = append(parts, fmt.Sprintf("Cycle: #%d", m.cycleCount))

	if m.lastCycle > 0 {
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Last scan: %s", m.lastCycle.Round(time.Millisecond))))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
