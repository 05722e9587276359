package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"pokearena/client/global"
	"pokearena/client/networking"
	"pokearena/client/session"
	"pokearena/client/views/gameview"
	"pokearena/client/views/mainmenu"
)

type model struct {
	ctrl        *session.Controller
	currentView tea.Model
}

func (m model) Init() tea.Cmd {
	return m.currentView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// A finished (or abandoned) battle always lands back on the main menu.
	if _, ok := msg.(gameview.BattleFinishedMsg); ok {
		m.currentView = mainmenu.NewModel(m.ctrl)
		return m, nil
	}

	newView, cmd := m.currentView.Update(msg)
	m.currentView = newView

	return m, cmd
}

func (m model) View() string {
	return m.currentView.View()
}

func main() {
	global.GlobalInit(false)

	api := networking.NewClient(global.Opt.ServerURL, networking.StaticToken(global.Opt.AuthToken))
	ctrl := session.NewController(api)

	m := model{
		ctrl:        ctrl,
		currentView: mainmenu.NewModel(ctrl),
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("program crashed")
		fmt.Fprintf(os.Stderr, "Error running program: %s\n", err)
		os.Exit(1)
	}
}
