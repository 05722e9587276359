package mainmenu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pokearena/client/game/core"
	"pokearena/client/rendering"
	"pokearena/client/session"
	"pokearena/client/views/gameview"
)

type MainMenuModel struct {
	ctrl    *session.Controller
	buttons rendering.MenuButtons
}

// quitModel is the sentinel the Quit button hands back so Update can tell a
// quit apart from a view change.
type quitModel struct{}

func (quitModel) Init() tea.Cmd                       { return nil }
func (quitModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return quitModel{}, nil }
func (quitModel) View() string                        { return "" }

func NewModel(ctrl *session.Controller) MainMenuModel {
	buttons := []rendering.ViewButton{
		{
			Name: "1v1 Battle",
			OnClick: func() tea.Model {
				return gameview.NewModel(ctrl, core.ModeOneOnOne)
			},
		},
		{
			Name: "5v5 Battle",
			OnClick: func() tea.Model {
				return gameview.NewModel(ctrl, core.ModeFiveOnFive)
			},
		},
		{
			Name: "Quit",
			OnClick: func() tea.Model {
				return quitModel{}
			},
		},
	}

	return MainMenuModel{
		ctrl:    ctrl,
		buttons: rendering.NewMenuButtons(buttons),
	}
}

func (m MainMenuModel) Init() tea.Cmd {
	return nil
}

func (m MainMenuModel) View() string {
	header := "PokeArena"
	return rendering.GlobalCenter(lipgloss.JoinVertical(lipgloss.Center, header, m.buttons.View()))
}

func (m MainMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel := m.buttons.Update(msg)
	if newModel != nil {
		newView, ok := newModel.(gameview.GameModel)
		if !ok {
			return m, tea.Quit
		}
		return newView, newView.Init()
	}

	return m, nil
}
