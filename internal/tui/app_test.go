package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResetReturnsToSetup(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(keyMsg("R"))
	app := model.(*App)

	if app.mode != modeSetup {
		t.Errorf("mode = %v, want setup", app.mode)
	}
	if app.sess != nil {
		t.Error("session still present after reset")
	}
}

func TestLateRecommendationAfterResetIsDropped(t *testing.T) {
	a := newTestApp()
	a.busy = true

	// Back to setup while the model call is still in flight.
	model, _ := a.Update(keyMsg("R"))
	app := model.(*App)

	model, _ = app.Update(recommendDoneMsg{titles: []string{"環狀線恢復營運"}})
	app = model.(*App)

	if app.busy {
		t.Error("busy flag not cleared by late recommendation")
	}
	if app.mode != modeSetup {
		t.Errorf("mode = %v, want setup", app.mode)
	}
}

func TestToggleKeySelectsCurrentItem(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(keyMsg(" "))
	app := model.(*App)

	if app.sess.SelectedCount() != 1 {
		t.Errorf("SelectedCount = %d, want 1", app.sess.SelectedCount())
	}

	model, _ = app.Update(keyMsg(" "))
	app = model.(*App)
	if app.sess.SelectedCount() != 0 {
		t.Errorf("SelectedCount after second toggle = %d, want 0", app.sess.SelectedCount())
	}
}
