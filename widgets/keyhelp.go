package widgets

import (
	"fmt"
	"strings"
)

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// GridKeys are the bindings Grid.HandleKey understands
var GridKeys = KeySection{
	Title: "grid",
	Keys: []KeyBinding{
		{Key: "h / l", Desc: "move cursor left/right through beats"},
		{Key: "j / k", Desc: "select track down/up"},
		{Key: "space", Desc: "toggle beat on/off"},
	},
}
