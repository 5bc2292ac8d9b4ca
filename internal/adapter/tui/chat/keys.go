package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"peora/internal/adapter/tui/components"
)

type keyMap struct {
	Quit   key.Binding
	Record key.Binding
	Cancel key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Top    key.Binding
	Bottom key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
	Record: key.NewBinding(key.WithKeys("ctrl+r")),
	Cancel: key.NewBinding(key.WithKeys("esc")),
	PgUp:   key.NewBinding(key.WithKeys("pgup")),
	PgDown: key.NewBinding(key.WithKeys("pgdown")),
	Top:    key.NewBinding(key.WithKeys("ctrl+home")),
	Bottom: key.NewBinding(key.WithKeys("ctrl+end")),
}

func pickerHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "Escolher"},
		{Key: "Enter", Desc: "Confirmar"},
		{Key: "Ctrl+C", Desc: "Sair"},
	}
}

func conversationHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Enviar"},
		{Key: "Alt+Enter", Desc: "Nova linha"},
		{Key: "Ctrl+R", Desc: "Gravar áudio"},
		{Key: "PgUp/PgDn", Desc: "Rolar"},
		{Key: "Ctrl+C", Desc: "Sair"},
	}
}

func recordingHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Ctrl+R", Desc: "Parar e transcrever"},
		{Key: "Esc", Desc: "Descartar"},
		{Key: "Ctrl+C", Desc: "Sair"},
	}
}
