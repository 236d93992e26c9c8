package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const mutationTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "clustermap [vault.json]",
		Short: "Interactive cluster graph for a note collection",
		Long: "clustermap renders the clusters of a collection as a force-directed\n" +
			"node-link diagram and lets you reshape the clustering on the diagram:\n" +
			"create clusters, promote notes to centers, ungroup, and delete.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Vault = args[0]
			}
			if cfg.Vault == "" {
				return fmt.Errorf("no vault given: pass a vault.json or set vault in the config")
			}
			return runTUI(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().Float64("threshold", 0.5, "default link score threshold")
	cmd.Flags().Int("fps", defaultFPS, "animation frames per second")
	cmd.Flags().Bool("confirmations", true, "confirm destructive actions")
	cmd.Flags().String("log-dir", defaultLogDir(), "directory for the debug log")
	cmd.Flags().BoolP("verbose", "v", false, "debug logging")

	bindFlags(v, cmd)

	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Config keys use underscores where flags use dashes (log-dir).
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func runTUI(cfg *Config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger, logFile := setupLogger(cfg.LogDir, level, cfg.LogRotation)
	defer logFile.Close()

	store, err := OpenVault(cfg.Vault, cfg.Threshold, logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		newModel(cfg, store, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

type model struct {
	cfg    *Config
	logger *slog.Logger
	source ClusterSource

	width  int
	height int

	graph    *GraphState
	sim      *Simulation
	view     *Viewport
	ctl      *Controller
	renderer *Renderer

	mode          Mode
	confirmAction ConfirmAction

	spinner spinner.Model
	loading bool
	busy    bool

	// Background drag pans the viewport; node presses go to the
	// controller instead.
	panning   bool
	mouseDown bool
	panLastX  int
	panLastY  int
	panStartX int
	panStartY int

	threshold    float64
	thresholdSeq int

	fitted bool

	errorMessage   string
	successMessage string
}

func newModel(cfg *Config, source ClusterSource, logger *slog.Logger) *model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		cfg:       cfg,
		logger:    logger,
		source:    source,
		view:      NewViewport(),
		renderer:  &Renderer{},
		spinner:   sp,
		threshold: source.Threshold(),
		loading:   true,
	}
}

type tickMsg time.Time

type snapshotMsg struct {
	snap *Snapshot
	err  error
}

type mutationDoneMsg struct {
	action Action
	err    error
}

type thresholdMsg struct {
	seq int
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshot(), m.tick(), m.spinner.Tick)
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSnapshot is the re-render entry point: fresh snapshot, full rebuild.
func (m *model) fetchSnapshot() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		snap, err := src.GetSnapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *model) dispatch(a Action) tea.Cmd {
	if m.busy || m.ctl == nil {
		return nil
	}
	sel := m.ctl.Selected()
	if !actionEnabled(sel, a) {
		m.errorMessage = fmt.Sprintf("%s: not applicable to the current selection", a)
		return nil
	}
	m.busy = true
	m.errorMessage = ""
	m.successMessage = ""
	src := m.source
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := Dispatch(ctx, src, a, sel)
		return mutationDoneMsg{action: a, err: err}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.graph != nil && !m.graph.Empty() {
			m.view.FitToContent(m.graph.Nodes, float64(m.width), float64(m.sceneHeight()))
		}
		return m, nil

	case tickMsg:
		if m.graph != nil {
			m.sim.Step()
			m.renderer.Advance(m.graph, m.ctl)
			if !m.fitted && m.width > 0 {
				m.view.FitToContent(m.graph.Nodes, float64(m.width), float64(m.sceneHeight()))
				m.fitted = true
			}
		}
		return m, m.tick()

	case spinner.TickMsg:
		if !m.busy && !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		return m.handleSnapshot(msg)

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			// Keep the pre-action view and selection intact.
			m.errorMessage = msg.err.Error()
			m.logger.Error("mutation failed", "action", msg.action.String(), "error", msg.err)
			return m, nil
		}
		m.successMessage = fmt.Sprintf("%s done", msg.action)
		m.loading = true
		return m, tea.Batch(m.fetchSnapshot(), m.spinner.Tick)

	case thresholdMsg:
		if msg.seq != m.thresholdSeq || m.graph == nil {
			return m, nil
		}
		m.graph.Relink(m.threshold)
		m.sim.Reheat()
		m.source.SetThreshold(m.threshold)
		m.source.QueueSave()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.logger.Error("snapshot fetch failed", "error", msg.err)
		return m, nil
	}
	m.graph = BuildGraph(msg.snap, m.threshold)
	m.sim = NewSimulation(m.graph, time.Now().UnixNano())
	if m.ctl == nil {
		m.ctl = NewController(m.graph, m.view, m.sim)
	} else {
		m.ctl.Rebind(m.graph, m.sim)
	}
	if !m.graph.Empty() {
		// Settle synchronously so the first paint is a stable layout, not
		// a scatter-and-settle animation.
		m.sim.Stabilize(stabilizeMaxSteps)
		if m.width > 0 {
			m.view.FitToContent(m.graph.Nodes, float64(m.width), float64(m.sceneHeight()))
			m.fitted = true
		} else {
			m.fitted = false
		}
	}
	m.logger.Debug("graph rebuilt",
		"nodes", len(m.graph.Nodes), "links", len(m.graph.Links), "threshold", m.threshold)
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal || m.graph == nil {
		return m, nil
	}
	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		// The shift modifier belongs to box select; the viewport must not
		// shift under a live rectangle.
		if msg.Shift || m.ctl.State() == ctlBoxSelecting {
			return m, nil
		}
		factor := zoomStep
		if msg.Button == tea.MouseButtonWheelDown {
			factor = 1 / zoomStep
		}
		m.view.ZoomAt(x, y, factor)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.mouseDown = true
		if !m.ctl.PointerDown(x, y, msg.Shift) {
			// Empty space without the modifier: pan.
			m.panning = true
			m.panLastX, m.panLastY = msg.X, msg.Y
			m.panStartX, m.panStartY = msg.X, msg.Y
		}
	case tea.MouseActionMotion:
		if m.panning {
			m.view.Pan(float64(msg.X-m.panLastX), float64(msg.Y-m.panLastY))
			m.panLastX, m.panLastY = msg.X, msg.Y
		} else if m.mouseDown {
			m.ctl.PointerMove(x, y)
		} else {
			m.ctl.Hover(x, y)
		}
	case tea.MouseActionRelease:
		if m.panning {
			m.panning = false
			// A motionless press on empty space is a clearing click, not
			// a pan.
			dx, dy := float64(msg.X-m.panStartX), float64(msg.Y-m.panStartY)
			if math.Hypot(dx, dy) < dragThreshold {
				m.ctl.PointerUp(x, y, msg.Shift)
			}
		} else if m.mouseDown {
			m.ctl.PointerUp(x, y, msg.Shift)
		}
		m.mouseDown = false
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil

	case ModeConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.mode = ModeNormal
			switch m.confirmAction {
			case ConfirmQuit:
				return m, tea.Quit
			case ConfirmRemoveClusters:
				return m, m.dispatch(ActionRemoveClusters)
			}
		default:
			m.mode = ModeNormal
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.mode = ModeHelp
		return m, nil
	case "esc":
		if m.ctl != nil {
			m.ctl.ClearSelection()
		}
		m.errorMessage = ""
		m.successMessage = ""
		return m, nil
	case "r":
		if !m.busy {
			m.loading = true
			return m, tea.Batch(m.fetchSnapshot(), m.spinner.Tick)
		}
		return m, nil
	case "f":
		if m.graph != nil && !m.graph.Empty() {
			m.view.FitToContent(m.graph.Nodes, float64(m.width), float64(m.sceneHeight()))
		}
		return m, nil
	case "p":
		if m.sim != nil {
			if m.sim.AllPinned {
				m.sim.UnpinAll()
			} else {
				m.sim.PinAll()
			}
		}
		return m, nil
	case "[":
		return m, m.nudgeThreshold(-thresholdStep)
	case "]":
		return m, m.nudgeThreshold(thresholdStep)
	case "+", "=":
		m.view.ZoomAt(float64(m.width)/2, float64(m.sceneHeight())/2, zoomStep)
		return m, nil
	case "-":
		m.view.ZoomAt(float64(m.width)/2, float64(m.sceneHeight())/2, 1/zoomStep)
		return m, nil
	case "h", "left":
		m.view.Pan(panKeySpeed, 0)
		return m, nil
	case "l", "right":
		m.view.Pan(-panKeySpeed, 0)
		return m, nil
	case "k", "up":
		m.view.Pan(0, panKeySpeed)
		return m, nil
	case "j", "down":
		m.view.Pan(0, -panKeySpeed)
		return m, nil
	case "e":
		return m, m.exportScene()
	case "y":
		if m.ctl != nil {
			count, err := copySelectionToClipboard(m.ctl.Selected())
			if err != nil {
				m.errorMessage = fmt.Sprintf("clipboard: %v", err)
			} else if count > 0 {
				m.successMessage = fmt.Sprintf("copied %d path(s)", count)
			}
		}
		return m, nil
	case "n":
		return m, m.dispatch(ActionCreateCluster)
	case "g":
		return m, m.dispatch(ActionUngroup)
	case "a":
		return m, m.dispatch(ActionAddToCenter)
	case "x":
		return m, m.dispatch(ActionRemoveFromCenter)
	case "d":
		if m.ctl == nil || !actionEnabled(m.ctl.Selected(), ActionRemoveClusters) {
			return m, m.dispatch(ActionRemoveClusters) // surfaces the error
		}
		if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmRemoveClusters
			return m, nil
		}
		return m, m.dispatch(ActionRemoveClusters)
	}
	return m, nil
}

func (m *model) nudgeThreshold(delta float64) tea.Cmd {
	if m.graph == nil {
		return nil
	}
	m.threshold = clamp(m.threshold+delta, 0, 1)
	// Coalesce rapid slider input before relinking.
	m.thresholdSeq++
	seq := m.thresholdSeq
	return tea.Tick(thresholdDebounce*time.Millisecond, func(time.Time) tea.Msg {
		return thresholdMsg{seq: seq}
	})
}

func (m *model) exportScene() tea.Cmd {
	if m.graph == nil || m.graph.Empty() {
		m.errorMessage = "nothing to export"
		return nil
	}
	filename := fmt.Sprintf("clustermap-%s.png", time.Now().Format("20060102-150405"))
	if err := ExportPNG(filename, m.graph, 1600, 1200); err != nil {
		m.errorMessage = fmt.Sprintf("export: %v", err)
	} else {
		m.successMessage = fmt.Sprintf("exported %s", filename)
	}
	return nil
}

func (m *model) sceneHeight() int {
	h := m.height - 2 // toolbar and status line
	if h < 1 {
		h = 1
	}
	return h
}

var (
	toolbarStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	toolbarActionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	toolbarDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusSuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	statusQuestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
)

func (m *model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.loading && m.graph == nil {
		return fmt.Sprintf("\n  %s loading %s...\n", m.spinner.View(), m.cfg.Vault)
	}
	if m.graph == nil {
		return fmt.Sprintf("\n  could not load %s\n\n  %s\n", m.cfg.Vault,
			statusErrorStyle.Render(m.errorMessage))
	}
	if m.graph.Empty() {
		// Empty-state fragment: no clusters, no simulation.
		return "\n  No clusters in this collection yet.\n\n" +
			"  Add items to the vault file, select notes and press " +
			toolbarActionStyle.Render("n") + " to create the first cluster.\n\n  " +
			m.statusLine()
	}

	scene := m.renderer.Render(m.graph, m.view, m.ctl, m.width, m.sceneHeight())
	var b strings.Builder
	b.WriteString(m.toolbarLine())
	b.WriteString("\n")
	b.WriteString(strings.Join(scene, "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *model) toolbarLine() string {
	enabled := map[Action]bool{}
	if m.ctl != nil {
		for _, a := range availableActions(m.ctl.Selected()) {
			enabled[a] = true
		}
	}
	action := func(key string, a Action) string {
		label := fmt.Sprintf("[%s]%s", key, a)
		if enabled[a] && !m.busy {
			return toolbarActionStyle.Render(label)
		}
		return toolbarDimStyle.Render(label)
	}
	pin := "off"
	if m.sim != nil && m.sim.AllPinned {
		pin = "on"
	}
	left := toolbarStyle.Render(fmt.Sprintf("zoom %.1fx  thr %.2f  pin %s  ", m.view.K, m.threshold, pin))
	parts := []string{
		action("n", ActionCreateCluster),
		action("g", ActionUngroup),
		action("a", ActionAddToCenter),
		action("x", ActionRemoveFromCenter),
		action("d", ActionRemoveClusters),
	}
	line := left + strings.Join(parts, " ")
	if m.busy {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m *model) statusLine() string {
	if m.mode == ModeConfirm {
		q := "quit? (y/n)"
		if m.confirmAction == ConfirmRemoveClusters {
			q = "remove selected cluster(s)? (y/n)"
		}
		return statusQuestionStyle.Render(q)
	}
	if m.errorMessage != "" {
		return statusErrorStyle.Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return statusSuccessStyle.Render(m.successMessage)
	}
	sel := 0
	if m.ctl != nil {
		sel = len(m.ctl.Selected())
	}
	return toolbarDimStyle.Render(fmt.Sprintf(
		"%d nodes · %d links · %d selected   drag:move  shift+drag:box  wheel:zoom  ?:help  q:quit",
		len(m.graph.Nodes), len(m.graph.Links), sel))
}

func (m *model) helpView() string {
	lines := []string{
		"clustermap help",
		"===============",
		"",
		"Mouse:",
		"  drag background     pan the view",
		"  wheel               zoom (anchored at the pointer)",
		"  click node          select (shift+click toggles)",
		"  drag node           move it; dragging a selected node moves the",
		"                      whole selection",
		"  shift+drag space    box select (shift on release adds to the",
		"                      current selection)",
		"  hover               highlight a node and its linked neighbors",
		"",
		"Keys:",
		"  h/j/k/l, arrows     pan",
		"  +/-                 zoom at the canvas center",
		"  f                   fit the whole graph in view",
		"  p                   pin/unpin the entire layout",
		"  [ / ]               lower / raise the link threshold",
		"  r                   refresh from the vault",
		"  e                   export the scene as PNG",
		"  y                   copy selected item paths to the clipboard",
		"  esc                 clear selection and messages",
		"",
		"Cluster actions (enabled by the selection):",
		"  n                   create a cluster from the selected notes",
		"  a                   promote selected notes to centers",
		"  g                   ungroup selection from its cluster",
		"  x                   demote selected centers",
		"  d                   remove the selected cluster(s)",
		"",
		"Zoom past 3.0x to expand a cluster into its center ring.",
		"",
		"press any key to close",
	}
	return strings.Join(lines, "\n")
}
