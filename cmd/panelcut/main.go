// PanelCut lays rectangular cut lists onto stock sheets and exports the
// resulting cutting plans.
//
// Build:
//
//	go build -o panelcut ./cmd/panelcut
package main

import "github.com/piwi3910/PanelCut/cmd/panelcut/commands"

func main() {
	commands.Execute()
}
