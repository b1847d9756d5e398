// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
	"github.com/walteh/cookieconsent/pkg/registry"
	"github.com/walteh/cookieconsent/pkg/widget"
)

// NewPromptCmd creates the interactive consent widget
func NewPromptCmd(o *opts.RootOpts) *cobra.Command {
	var reopen bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Show the consent widget in the terminal",
		Long: `Prompt renders the consent widget for every configured consent group.
The widget only appears when no preferences are stored, unless --reopen is set.

Keys:
  ↑/k ↓/j  move
  space/x  toggle the selected group
  a / n    select all / none
  enter    save
  q / esc  close without saving`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := o.Open(ctx)
			if err != nil {
				return err
			}

			if reopen {
				s.Engine.Show(ctx)
			}
			if !s.Engine.Widget().IsVisible() {
				s.User.LogStateChange("Preferences already stored, use --reopen to change them")
				return nil
			}

			final, err := tea.NewProgram(newPromptModel(s.Registry.Categories(), s.Controls)).Run()
			if err != nil {
				return errors.Errorf("running prompt: %w", err)
			}
			if m, ok := final.(promptModel); !ok || !m.saved {
				s.User.LogStateChange("Closed without saving")
				return nil
			}
			return s.Save(ctx)
		},
	}

	cmd.Flags().BoolVar(&reopen, "reopen", false, "show the widget even when preferences are stored")
	return cmd
}

// promptKeyMap defines the widget's keyboard bindings.
type promptKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	None   key.Binding
	Save   key.Binding
	Quit   key.Binding
}

func defaultPromptKeys() promptKeyMap {
	return promptKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all"),
		),
		None: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "none"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q", "esc"),
			key.WithHelp("q", "close"),
		),
	}
}

func (k promptKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.None, k.Save, k.Quit}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	grantedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	declinedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

// 🍪 promptModel is the consent widget. It edits the controls in place; the
// caller saves them once the program exits with saved set.
type promptModel struct {
	categories []registry.Category
	controls   widget.ControlMap
	keys       promptKeyMap
	cursor     int
	saved      bool
}

func newPromptModel(categories []registry.Category, controls widget.ControlMap) promptModel {
	return promptModel{
		categories: categories,
		controls:   controls,
		keys:       defaultPromptKeys(),
	}
}

func (m promptModel) Init() tea.Cmd {
	return nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Save):
		m.saved = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if c, ok := m.control(m.cursor); ok {
			c.SetChecked(!c.Checked())
		}
	case key.Matches(keyMsg, m.keys.All):
		m.setAll(true)
	case key.Matches(keyMsg, m.keys.None):
		m.setAll(false)
	}
	return m, nil
}

func (m promptModel) control(i int) (widget.Control, bool) {
	if i < 0 || i >= len(m.categories) {
		return nil, false
	}
	return m.controls.Control(m.categories[i].Handle)
}

func (m promptModel) setAll(checked bool) {
	for i := range m.categories {
		if c, ok := m.control(i); ok {
			c.SetChecked(checked)
		}
	}
}

func (m promptModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🍪 Cookie preferences"))
	b.WriteString("\n\n")

	for i, cat := range m.categories {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("▸ ")
		}

		box := declinedStyle.Render("[ ]")
		if c, ok := m.control(i); ok && c.Checked() {
			box = grantedStyle.Render("[x]")
		}

		name := cat.Name
		if name == "" {
			name = cat.Handle
		}
		fmt.Fprintf(&b, "%s%s %s\n", pointer, box, name)
		if cat.Description != "" {
			fmt.Fprintf(&b, "      %s\n", mutedStyle.Render(cat.Description))
		}
	}

	help := make([]string, 0, len(m.keys.bindings()))
	for _, binding := range m.keys.bindings() {
		h := binding.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Join(help, " • ")))

	return boxStyle.Render(b.String())
}
