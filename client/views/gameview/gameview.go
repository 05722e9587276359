package gameview

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"pokearena/client/game/core"
	"pokearena/client/global"
	"pokearena/client/rendering"
	"pokearena/client/session"
)

// BattleFinishedMsg tells the root model to swap back to the main menu.
type BattleFinishedMsg struct{}

type stateMsg struct {
	state *core.BattleState
}

type errMsg struct {
	err error
}

type focusArea int

const (
	focusActions focusArea = iota
	focusMoves
	focusDeck
	focusReward
)

const (
	barWidth     = 14
	logTailLines = 8
)

type GameModel struct {
	ctrl *session.Controller
	mode core.BattleMode

	focus       focusArea
	actionFocus int
	moveFocus   int
	deckFocus   int
	rewardFocus int

	errLine string
}

func NewModel(ctrl *session.Controller, mode core.BattleMode) GameModel {
	return GameModel{
		ctrl: ctrl,
		mode: mode,
	}
}

func (m GameModel) Init() tea.Cmd {
	ctrl := m.ctrl
	mode := m.mode
	return func() tea.Msg {
		state, err := ctrl.Start(context.Background(), mode)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state}
	}
}

func (m GameModel) submitCmd(action core.ActionKind, moveIdx int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		state, err := ctrl.SubmitMove(context.Background(), action, moveIdx)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state}
	}
}

func (m GameModel) switchCmd(newIdx int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		state, err := ctrl.SwitchActive(context.Background(), newIdx)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state}
	}
}

func (m GameModel) rewardCmd(pokemonIdx int) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.SelectReward(context.Background(), pokemonIdx); err != nil {
			return errMsg{err}
		}
		return stateMsg{ctrl.State()}
	}
}

func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.errLine = ""
		if state := msg.state; state != nil && state.BattleOver && state.RewardSelectable() {
			m.focus = focusReward
		}
		return m, nil

	case errMsg:
		m.errLine = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()

	if key.Matches(msg, global.BackKey) {
		m.ctrl.Abandon()
		return m, func() tea.Msg { return BattleFinishedMsg{} }
	}

	if state == nil {
		return m, nil
	}

	if state.BattleOver {
		return m.handleEndKey(msg, state)
	}

	if m.ctrl.Phase() != session.PhaseAwaitingPlayerAction {
		return m, nil
	}

	switch m.focus {
	case focusActions:
		return m.handleActionKey(msg, state)
	case focusMoves:
		return m.handleMoveKey(msg, state)
	case focusDeck:
		return m.handleDeckKey(msg, state)
	}

	return m, nil
}

func (m GameModel) handleActionKey(msg tea.KeyMsg, state *core.BattleState) (tea.Model, tea.Cmd) {
	actions := core.LegalActions(state)
	if len(actions) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, global.MoveDownKey):
		m.actionFocus = (m.actionFocus + 1) % len(actions)
	case key.Matches(msg, global.MoveUpKey):
		m.actionFocus--
		if m.actionFocus < 0 {
			m.actionFocus = len(actions) - 1
		}
	case key.Matches(msg, global.DownTabKey):
		if m.mode == core.ModeFiveOnFive {
			m.focus = focusDeck
			m.deckFocus = state.PlayerActiveIdx
		}
	case key.Matches(msg, global.SelectKey):
		if m.actionFocus >= len(actions) {
			m.actionFocus = 0
		}
		action := actions[m.actionFocus]
		if action == core.ActionAttack {
			m.focus = focusMoves
			m.moveFocus = 0
			return m, nil
		}
		return m, m.submitCmd(action, 0)
	}

	return m, nil
}

func (m GameModel) handleMoveKey(msg tea.KeyMsg, state *core.BattleState) (tea.Model, tea.Cmd) {
	card := state.ActivePlayerCard()
	if card == nil || len(card.Moves) == 0 {
		m.focus = focusActions
		return m, nil
	}

	switch {
	case key.Matches(msg, global.MoveDownKey):
		m.moveFocus = (m.moveFocus + 1) % len(card.Moves)
	case key.Matches(msg, global.MoveUpKey):
		m.moveFocus--
		if m.moveFocus < 0 {
			m.moveFocus = len(card.Moves) - 1
		}
	case key.Matches(msg, global.MoveLeftKey):
		m.focus = focusActions
	case key.Matches(msg, global.SelectKey):
		if lo.Contains(core.SelectableMoves(card), m.moveFocus) {
			m.focus = focusActions
			return m, m.submitCmd(core.ActionAttack, m.moveFocus)
		}
		m.errLine = "not enough stamina for that move"
	}

	return m, nil
}

func (m GameModel) handleDeckKey(msg tea.KeyMsg, state *core.BattleState) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, global.MoveRightKey):
		m.deckFocus = (m.deckFocus + 1) % len(state.PlayerDeck)
	case key.Matches(msg, global.MoveLeftKey):
		m.deckFocus--
		if m.deckFocus < 0 {
			m.deckFocus = len(state.PlayerDeck) - 1
		}
	case key.Matches(msg, global.UpTabKey):
		m.focus = focusActions
	case key.Matches(msg, global.SelectKey):
		if core.CanSwitch(state, m.deckFocus) {
			m.focus = focusActions
			return m, m.switchCmd(m.deckFocus)
		}
		m.errLine = "that card can't come in right now"
	}

	return m, nil
}

func (m GameModel) handleEndKey(msg tea.KeyMsg, state *core.BattleState) (tea.Model, tea.Cmd) {
	if m.focus == focusReward && state.RewardSelectable() {
		switch {
		case key.Matches(msg, global.MoveRightKey):
			m.rewardFocus = (m.rewardFocus + 1) % len(state.AIDeck)
		case key.Matches(msg, global.MoveLeftKey):
			m.rewardFocus--
			if m.rewardFocus < 0 {
				m.rewardFocus = len(state.AIDeck) - 1
			}
		case key.Matches(msg, global.SelectKey):
			return m, m.rewardCmd(m.rewardFocus)
		}
		return m, nil
	}

	if key.Matches(msg, global.SelectKey) {
		return m, func() tea.Msg { return BattleFinishedMsg{} }
	}
	return m, nil
}

func (m GameModel) View() string {
	state := m.ctrl.State()
	if state == nil {
		line := "Starting battle..."
		if m.errLine != "" {
			line = rendering.ErrorStyle.Render(m.errLine) + "\nPress esc to go back"
		}
		return rendering.GlobalCenter(line)
	}

	if state.BattleOver {
		return m.endView(state)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.cardPanel("You", state.ActivePlayerCard()),
		"   ",
		m.cardPanel("Opponent", state.ActiveAICard()),
	)

	sections := []string{
		fmt.Sprintf("Turn %d  Round %d", state.TurnNumber, state.RoundNumber),
		top,
		m.logView(state),
	}

	switch m.focus {
	case focusMoves:
		sections = append(sections, m.movesView(state))
	default:
		sections = append(sections, m.actionsView(state))
	}

	if m.mode == core.ModeFiveOnFive {
		sections = append(sections, m.deckView(state))
	}

	if m.ctrl.Phase() == session.PhaseSubmittingAction {
		sections = append(sections, "Waiting for the opponent...")
	}

	if m.errLine != "" {
		sections = append(sections, rendering.ErrorStyle.Render(m.errLine))
	}

	return rendering.GlobalCenter(lipgloss.JoinVertical(lipgloss.Center, sections...))
}

func (m GameModel) cardPanel(owner string, card *core.Combatant) string {
	if card == nil {
		return rendering.PanelStyle.Render("???")
	}

	name := rendering.DisplayName(card.Name)
	if card.FaceDown {
		name = "???"
	}

	lines := []string{
		fmt.Sprintf("%s: %s (Lv %d)", owner, name, card.Level),
		rendering.Bar("HP", card.HP, card.HPMax, barWidth),
		rendering.Bar("STA", card.Stamina, card.StaminaMax, barWidth),
	}
	if card.KnockedOut {
		lines = append(lines, "KNOCKED OUT")
	}

	return rendering.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m GameModel) actionsView(state *core.BattleState) string {
	actions := core.LegalActions(state)
	rows := make([]string, 0, len(actions))
	for i, action := range actions {
		label := action.String()
		if i == m.actionFocus && m.focus == focusActions {
			rows = append(rows, rendering.HighlightedItemStyle.Render(label))
		} else {
			rows = append(rows, rendering.ItemStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m GameModel) movesView(state *core.BattleState) string {
	card := state.ActivePlayerCard()
	if card == nil {
		return ""
	}

	affordable := core.SelectableMoves(card)
	rows := make([]string, 0, len(card.Moves))
	for i, move := range card.Moves {
		label := fmt.Sprintf("%s  pow %d  sta %d", rendering.DisplayName(move.Name), move.Power, move.StaminaCost)
		switch {
		case i == m.moveFocus:
			rows = append(rows, rendering.HighlightedItemStyle.Render(label))
		case !lo.Contains(affordable, i):
			rows = append(rows, rendering.FaintedItemStyle.Render(label))
		default:
			rows = append(rows, rendering.ItemStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m GameModel) deckView(state *core.BattleState) string {
	panels := make([]string, 0, len(state.PlayerDeck))
	for i := range state.PlayerDeck {
		card := &state.PlayerDeck[i]
		label := rendering.DisplayName(card.Name)
		if card.KnockedOut {
			label += " ✗"
		}
		if i == state.PlayerActiveIdx {
			label += " *"
		}

		style := rendering.PanelStyle
		if m.focus == focusDeck && i == m.deckFocus {
			style = rendering.HighlightedPanelStyle
		}
		panels = append(panels, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, panels...)
}

func (m GameModel) logView(state *core.BattleState) string {
	entries := state.Log
	if len(entries) > logTailLines {
		entries = entries[len(entries)-logTailLines:]
	}
	return lipgloss.JoinVertical(lipgloss.Left, entries...)
}

func (m GameModel) endView(state *core.BattleState) string {
	headline := "It's a draw!"
	switch state.Winner {
	case core.WinnerPlayer:
		headline = "You won!"
	case core.WinnerAI:
		headline = "You lost..."
	}

	sections := []string{headline}

	if rewards := state.Rewards; rewards != nil {
		sections = append(sections, fmt.Sprintf("Coins earned: %d", rewards.CoinsEarned))
		for _, gain := range rewards.XPDetails {
			sections = append(sections, fmt.Sprintf("%s +%d XP", rendering.DisplayName(gain.Name), gain.XPGained))
		}
		for _, levelUp := range rewards.LevelUps {
			sections = append(sections, fmt.Sprintf("%s reached level %d!", rendering.DisplayName(levelUp.Name), levelUp.NewLevel))
		}
		for _, achievement := range rewards.NewlyUnlockedAchievements {
			sections = append(sections, fmt.Sprintf("Achievement unlocked: %s", achievement.Name))
		}
	}

	if m.focus == focusReward && state.RewardSelectable() {
		sections = append(sections, "", "Pick an opposing card to add to your collection:")
		panels := make([]string, 0, len(state.AIDeck))
		for i := range state.AIDeck {
			card := &state.AIDeck[i]
			label := rendering.DisplayName(card.Name)
			if card.FaceDown {
				label = "???"
			}
			style := rendering.PanelStyle
			if i == m.rewardFocus {
				style = rendering.HighlightedPanelStyle
			}
			panels = append(panels, style.Render(label))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center, panels...))
	} else {
		sections = append(sections, "", "Press enter to return to the menu")
	}

	if m.errLine != "" {
		sections = append(sections, rendering.ErrorStyle.Render(m.errLine))
	}

	return rendering.GlobalCenter(lipgloss.JoinVertical(lipgloss.Center, sections...))
}
