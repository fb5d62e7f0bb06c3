package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"modelscan/internal/engine/scan"
	"modelscan/internal/ui/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	findingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	modelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type findingItem struct {
	title, desc string
	finding     scan.Finding
}

func (i findingItem) Title() string       { return i.title }
func (i findingItem) Description() string { return i.desc }
func (i findingItem) FilterValue() string { return i.title + i.desc }

type browserModel struct {
	list         list.Model
	findings     []scan.Finding
	models       []string
	filesScanned int
	lastUpdate   time.Time
	showDetail   bool
	jumpStatus   string
}

// reportMsg delivers a fresh scan result to the running browser.
type reportMsg struct {
	report *report.Report
}

type sourceJumpMsg struct {
	target string
	err    error
}

func newBrowserModel(rep *report.Report) browserModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Findings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	m := browserModel{
		list:       l,
		lastUpdate: time.Now(),
	}
	return m.withReport(rep)
}

func (m browserModel) withReport(rep *report.Report) browserModel {
	m.findings = rep.Findings
	m.models = rep.Summary.ModelsFound
	m.filesScanned = rep.FilesScanned
	m.lastUpdate = time.Now()

	items := make([]list.Item, 0, len(rep.Findings))
	for _, f := range rep.Findings {
		items = append(items, findingItem{
			title:   fmt.Sprintf("%s (%s)", f.Model, f.Type),
			desc:    findingDesc(f),
			finding: f,
		})
	}
	m.list.SetItems(items)
	return m
}

func findingDesc(f scan.Finding) string {
	desc := fmt.Sprintf("%s:%d", f.File, f.Line)
	if f.Note != "" {
		desc += " " + f.Note
	}
	return desc
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Filtering owns the keyboard while active.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "tab":
			if len(m.list.Items()) > 0 {
				m.showDetail = !m.showDetail
				m.jumpStatus = ""
			}
			return m, nil
		case "esc", "backspace":
			m.showDetail = false
			m.jumpStatus = ""
			return m, nil
		case "o":
			if item, ok := m.list.SelectedItem().(findingItem); ok {
				return m, openInEditorCmd(item.finding.File, item.finding.Line)
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case reportMsg:
		return m.withReport(msg.report), nil
	case sourceJumpMsg:
		if msg.err != nil {
			m.jumpStatus = fmt.Sprintf("Failed to open %s: %v", msg.target, msg.err)
		} else {
			m.jumpStatus = fmt.Sprintf("Opened %s", msg.target)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last scan: %v | %d files",
		m.lastUpdate.Format("15:04:05"), m.filesScanned))

	var summary string
	if len(m.findings) == 0 {
		summary = successStyle.Render("✅ No model identifiers")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			findingStyle.Render(fmt.Sprintf("%d Findings", len(m.findings))),
			modelStyle.Render(fmt.Sprintf("%d Models", len(m.models))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Model Identifier Monitor"), status, summary)

	body := m.list.View()
	if m.showDetail {
		body = m.detailView()
	}
	return docStyle.Render(header + "\n" + body)
}

func (m browserModel) detailView() string {
	item, ok := m.list.SelectedItem().(findingItem)
	if !ok {
		return statusStyle.Render("No finding selected.")
	}
	f := item.finding

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle(f.Model))
	fmt.Fprintf(&b, "Type:     %s\n", f.Type)
	fmt.Fprintf(&b, "Location: %s:%d:%d\n", f.File, f.Line, f.Column)
	if f.Pattern != "" {
		fmt.Fprintf(&b, "Pattern:  %s\n", f.Pattern)
	}
	if f.Variable != "" {
		fmt.Fprintf(&b, "Variable: %s\n", f.Variable)
	}
	if f.Code != "" {
		fmt.Fprintf(&b, "Code:     %s\n", f.Code)
	}
	if len(f.Components) > 0 {
		fmt.Fprintf(&b, "Built from: %s\n", strings.Join(f.Components, " + "))
	}
	if f.Note != "" {
		fmt.Fprintf(&b, "Note:     %s\n", f.Note)
	}
	if len(f.UsageLocations) > 0 {
		fmt.Fprintf(&b, "\nUsed %d time(s), %d API call(s):\n", f.UsageCount, f.APICallCount)
		for _, u := range f.UsageLocations {
			target := u.Function
			if target == "" {
				target = u.Context
			}
			if u.Parameter != "" {
				target = fmt.Sprintf("%s(%s=...)", target, u.Parameter)
			}
			fmt.Fprintf(&b, "  -> %s at %s:%d\n", target, u.File, u.Line)
		}
	}

	help := "esc to return | o to open in $EDITOR | q to quit"
	if m.jumpStatus != "" {
		help = m.jumpStatus + " | " + help
	}
	b.WriteString("\n" + statusStyle.Render(help))
	return b.String()
}

func openInEditorCmd(file string, line int) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	args := []string{file}
	if strings.Contains(editor, "vim") || strings.Contains(editor, "nvim") || strings.HasSuffix(editor, "/vi") {
		args = []string{fmt.Sprintf("+%d", line), file}
	}
	cmd := exec.Command(editor, args...)
	label := fmt.Sprintf("%s:%d", file, line)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return sourceJumpMsg{target: label, err: err}
	})
}
