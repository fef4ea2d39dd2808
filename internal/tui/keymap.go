package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the viewer's key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	Select  key.Binding
	Back    key.Binding
	Jump    key.Binding
	Filter  key.Binding
	All     key.Binding
	Narrate key.Binding
	Refresh key.Binding

	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap follows less/vim conventions for movement.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       bind("↑/k", "up", "k", "up"),
		Down:     bind("↓/j", "down", "j", "down"),
		PageUp:   bind("PgUp/Ctrl+B", "page up", "pgup", "ctrl+b"),
		PageDown: bind("PgDn/Ctrl+F", "page down", "pgdown", "ctrl+f"),
		Home:     bind("Home/g", "first account", "home", "g"),
		End:      bind("End/G", "last account", "end", "G"),

		Select:  bind("Enter", "account detail", "enter"),
		Back:    bind("Esc", "back", "esc", "backspace"),
		Jump:    bind("/", "jump to ID", "/"),
		Filter:  bind("b", "cycle bucket filter", "b"),
		All:     bind("a", "all buckets", "a"),
		Narrate: bind("n", "narrate", "n"),
		Refresh: bind("r", "regenerate", "r"),

		Help:      bind("?", "help", "?"),
		Quit:      bind("q", "quit", "q"),
		ForceQuit: bind("Ctrl+C", "force quit", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Filter, k.Jump, k.Narrate, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Select, k.Back, k.Jump},
		{k.Filter, k.All},
		{k.Narrate, k.Refresh},
		{k.Help, k.Quit},
	}
}
