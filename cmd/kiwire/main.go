// kiwire resolves pins, routes wires and checks connectivity in KiCad
// schematic sheets.
package main

import "github.com/OpenTraceLab/kiwire/cmd/kiwire/cmd"

func main() {
	cmd.Execute()
}
