package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/render"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [page.layout.json]",
		Short: "Browse a laid out page",
		Long: `Browse the staves of a laid out page (written by 'layout -f json') and the
curves and floating objects placed around each of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			page, err := render.ReadJSON(data)
			if err != nil {
				return fmt.Errorf("%s is not a layout: %w", args[0], err)
			}
			loggerFromContext(cmd.Context()).Debug("loaded layout", "systems", len(page.Systems))

			m := NewPageModel(page)
			if plain || len(m.Staves) == 0 {
				for i := range m.Staves {
					fmt.Fprintln(c.out, m.staffHeader(i))
					fmt.Fprintln(c.out, m.detail(i))
				}
				return nil
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print every staff instead of browsing")
	return cmd
}

// =============================================================================
// PageModel - Interactive page browser
// =============================================================================

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// staffRef locates one staff of the page.
type staffRef struct {
	System int
	Staff  int
}

// PageModel is the bubbletea model browsing the staves of a page.
type PageModel struct {
	Page   *layout.Page
	Staves []staffRef
	Cursor int
	Offset int
	Height int
}

// NewPageModel lists every staff of page in system order.
func NewPageModel(page *layout.Page) PageModel {
	m := PageModel{Page: page, Height: 12}
	for si, sys := range page.Systems {
		for i := range sys.Staves {
			m.Staves = append(m.Staves, staffRef{System: si, Staff: i})
		}
	}
	return m
}

func (m PageModel) Init() tea.Cmd {
	return nil
}

func (m PageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Staves)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Staves)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height/3, 5)
	}
	return m, nil
}

func (m PageModel) View() string {
	var b strings.Builder

	title := m.Page.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d systems · height %.1f", len(m.Page.Systems), m.Page.Height)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Staves))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(cursor + m.staffHeader(i)))
		b.WriteString("\n")
	}

	if len(m.Staves) > 0 {
		b.WriteString("\n")
		b.WriteString(m.detail(m.Cursor))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Staves))))
	}
	return b.String()
}

func (m PageModel) staff(i int) (layout.SystemLayout, layout.StaffLayout) {
	ref := m.Staves[i]
	sys := m.Page.Systems[ref.System]
	return sys, sys.Staves[ref.Staff]
}

// staffHeader summarises staff i on one line.
func (m PageModel) staffHeader(i int) string {
	sys, st := m.staff(i)
	return fmt.Sprintf("system %d · staff %d  y %.1f  overflow +%.1f/-%.1f  %d curves  %d objects",
		m.Staves[i].System+1, st.N, sys.YRel+st.YRel,
		st.OverflowAbove, st.OverflowBelow, len(st.Curves), len(st.Floating))
}

// detail renders the curves and floating objects of staff i.
func (m PageModel) detail(i int) string {
	_, st := m.staff(i)
	var rows [][]string
	for _, c := range st.Curves {
		kind := c.Class
		if c.CrossStaff {
			kind += " ×"
		}
		p := c.Points
		rows = append(rows, []string{c.ID, kind, c.Dir,
			fmt.Sprintf("(%.1f,%.1f) → (%.1f,%.1f)", p[0].X, p[0].Y, p[3].X, p[3].Y),
			fmt.Sprintf("%.1f°", c.Angle)})
	}
	for _, f := range st.Floating {
		rows = append(rows, []string{f.ID, f.Class, f.Place,
			fmt.Sprintf("[%.1f, %.1f]", f.Box.Bottom, f.Box.Top),
			fmt.Sprintf("y %.1f", f.DrawingYRel)})
	}
	if len(rows) == 0 {
		return listDimStyle.Render("  nothing placed around this staff")
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Kind", "Place", "Extent", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			if col >= 3 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
