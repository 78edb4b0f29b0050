package cli

import "github.com/charmbracelet/bubbles/key"

type ledgerKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	Add        key.Binding
	Duplicate  key.Binding
	Edit       key.Binding
	Save       key.Binding
	Delete     key.Binding
	Reload     key.Binding
	Export     key.Binding
	SwitchUser key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultLedgerKeys() ledgerKeyMap {
	return ledgerKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevMonth:  key.NewBinding(key.WithKeys("[", "left"), key.WithHelp("[", "prev month")),
		NextMonth:  key.NewBinding(key.WithKeys("]", "right"), key.WithHelp("]", "next month")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Duplicate:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "duplicate")),
		Edit:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Delete:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Export:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "csv")),
		SwitchUser: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "user")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k ledgerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Save, k.Delete, k.PrevMonth, k.NextMonth, k.Help, k.Quit}
}

func (k ledgerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevMonth, k.NextMonth},
		{k.Add, k.Duplicate, k.Edit, k.Save, k.Delete},
		{k.Reload, k.Export, k.SwitchUser, k.Help, k.Quit},
	}
}
