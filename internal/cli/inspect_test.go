package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

func testPage() *layout.Page {
	return &layout.Page{
		Title:  "Lied",
		Height: 300,
		Systems: []layout.SystemLayout{
			{YRel: 0, Staves: []layout.StaffLayout{
				{N: 1, YRel: 0, Curves: []layout.CurveLayout{{ID: "sl1", Class: "slur", Dir: "above"}}},
				{N: 2, YRel: -120, Floating: []layout.FloatingLayout{{ID: "d1", Class: "dynam", Place: "below", Box: geom.R(0, 20, -90, -80)}}},
			}},
			{YRel: -200, Staves: []layout.StaffLayout{{N: 1}}},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m PageModel, keys ...string) PageModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(PageModel)
	}
	return m
}

func TestPageModelNavigation(t *testing.T) {
	m := NewPageModel(testPage())
	if len(m.Staves) != 3 {
		t.Fatalf("%d staves, want 3", len(m.Staves))
	}

	tests := []struct {
		keys []string
		want int
	}{
		{nil, 0},
		{[]string{"down"}, 1},
		{[]string{"down", "j", "down"}, 2},
		{[]string{"down", "down", "up"}, 1},
		{[]string{"up"}, 0},
		{[]string{"G"}, 2},
		{[]string{"G", "g"}, 0},
	}
	for _, tt := range tests {
		if got := press(m, tt.keys...).Cursor; got != tt.want {
			t.Errorf("keys %v: cursor = %d, want %d", tt.keys, got, tt.want)
		}
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q does not quit")
	}
}

func TestPageModelScrolls(t *testing.T) {
	m := NewPageModel(testPage())
	m.Height = 1
	m = press(m, "down", "down")
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2", m.Offset)
	}
	m = press(m, "up")
	if m.Offset != 1 {
		t.Errorf("offset = %d, want 1", m.Offset)
	}
}

func TestPageModelView(t *testing.T) {
	m := press(NewPageModel(testPage()), "down")
	view := m.View()

	for _, want := range []string{"Lied", "system 1 · staff 2", "d1", "dynam", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "sl1") {
		t.Error("view shows the objects of an unselected staff")
	}

	empty := press(NewPageModel(testPage()), "G")
	if !strings.Contains(empty.View(), "nothing placed") {
		t.Error("empty staff detail missing")
	}
}
