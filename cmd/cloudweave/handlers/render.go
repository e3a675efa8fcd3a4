package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/cloudweave/internal/backend"
	"github.com/imamik/cloudweave/internal/credentials"
	"github.com/imamik/cloudweave/internal/orchestration"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorAmber = lipgloss.Color("#f59e0b")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
	amberStyle   = lipgloss.NewStyle().Foreground(colorAmber)
)

// painter applies styles only when colour output is enabled.
type painter struct {
	color bool
}

func (p painter) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p painter) state(state orchestration.State) string {
	switch state {
	case orchestration.StateDone:
		return p.paint(greenStyle, string(state))
	case orchestration.StatePartial:
		return p.paint(amberStyle, string(state))
	case orchestration.StateFailed:
		return p.paint(redStyle, string(state))
	default:
		return string(state)
	}
}

func (p painter) status(status backend.Status) string {
	switch status {
	case backend.StatusRunning:
		return p.paint(greenStyle, string(status))
	case backend.StatusFailed, backend.StatusUnreachable:
		return p.paint(redStyle, string(status))
	default:
		return p.paint(dimStyle, string(status))
	}
}

// table renders rows as left-aligned columns. Widths are computed on the
// unstyled cells so colour codes never skew alignment.
func (p painter) table(b *strings.Builder, header []string, rows [][]string, style func(col int, cell string) string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	b.WriteString("  ")
	for i, h := range header {
		b.WriteString(p.paint(dimStyle, pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("  ")
		for i, cell := range row {
			rendered := cell
			if style != nil {
				rendered = style(i, cell)
			}
			b.WriteString(rendered)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
		}
		b.WriteString("\n")
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-len(s))
}

// renderResult produces the cluster creation summary: the final state, the
// manager, and one row per worker backend.
func renderResult(result *orchestration.ClusterResult, color bool) string {
	p := painter{color: color}
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(p.paint(titleStyle, fmt.Sprintf("  cloudweave cluster: %s", result.Cluster)))
	b.WriteString("  ")
	b.WriteString(p.state(result.Status))
	b.WriteString("\n")
	b.WriteString(p.paint(dimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n\n")

	b.WriteString(p.paint(sectionStyle, "  Manager"))
	b.WriteString("\n")
	if result.Manager != nil {
		m := result.Manager
		p.table(&b, []string{"NAME", "BACKEND", "ADDRESS", "STATUS"},
			[][]string{{m.Name, m.Backend, m.Address, string(m.Status)}},
			func(col int, cell string) string {
				if col == 3 {
					return p.status(backend.Status(cell))
				}
				return cell
			})
	} else {
		b.WriteString("  " + p.paint(dimStyle, "none") + "\n")
	}
	if result.Failure != "" {
		b.WriteString("  " + p.paint(redStyle, result.Failure) + "\n")
	}

	if len(result.Workers) > 0 {
		b.WriteString("\n")
		b.WriteString(p.paint(sectionStyle, "  Workers"))
		b.WriteString("\n")

		names := make([]string, 0, len(result.Workers))
		for name := range result.Workers {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			outcome := result.Workers[name]
			state := "ok"
			detail := ""
			if outcome.Err != nil {
				state = "error"
				detail = outcome.Err.Error()
			}
			rows = append(rows, []string{
				name,
				fmt.Sprintf("%d/%d", len(outcome.Instances), outcome.Requested),
				state,
				detail,
			})
		}
		p.table(&b, []string{"BACKEND", "CREATED", "RESULT", "ERROR"}, rows, func(col int, cell string) string {
			switch {
			case col == 2 && cell == "ok":
				return p.paint(greenStyle, cell)
			case col == 2:
				return p.paint(redStyle, cell)
			case col == 3:
				return p.paint(dimStyle, cell)
			}
			return cell
		})
	}

	b.WriteString("\n")
	b.WriteString(p.paint(dimStyle, fmt.Sprintf("  request %s finished in %s", result.RequestID, result.Duration().Round(time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}

// renderInstances lists instances of one backend.
func renderInstances(backendName string, instances []backend.InstanceInfo, color bool) string {
	p := painter{color: color}
	var b strings.Builder

	b.WriteString(p.paint(sectionStyle, fmt.Sprintf("  %s", backendName)))
	b.WriteString("\n")
	if len(instances) == 0 {
		b.WriteString("  " + p.paint(dimStyle, "no instances") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		rows = append(rows, []string{inst.Name, inst.ID, string(inst.Role), inst.Address, string(inst.Status)})
	}
	p.table(&b, []string{"NAME", "ID", "ROLE", "ADDRESS", "STATUS"}, rows, func(col int, cell string) string {
		if col == 4 {
			return p.status(backend.Status(cell))
		}
		return cell
	})
	return b.String()
}

// renderCredentials lists credential records sorted by instance name.
func renderCredentials(records map[string]credentials.Record, color bool) string {
	p := painter{color: color}
	var b strings.Builder

	if len(records) == 0 {
		b.WriteString("  " + p.paint(dimStyle, "no credentials recorded") + "\n")
		return b.String()
	}

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rec := records[name]
		rows = append(rows, []string{name, rec.Backend, string(rec.Role), rec.Address, rec.Username, rec.Password})
	}
	p.table(&b, []string{"NAME", "BACKEND", "ROLE", "ADDRESS", "USER", "PASSWORD"}, rows, nil)
	return b.String()
}
