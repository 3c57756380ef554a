// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxa is a metapackage for commands
// that dealt with taxonomies.
package taxa

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeko/cmd/treeko/taxa/importcmd"
	"github.com/js-arias/treeko/cmd/treeko/taxa/info"
	"github.com/js-arias/treeko/cmd/treeko/taxa/terms"
	"github.com/js-arias/treeko/cmd/treeko/taxa/topology"
)

var Command = &command.Command{
	Usage: "taxa <command> [<argument>...]",
	Short: "commands for taxonomies",
}

func init() {
	Command.Add(importcmd.Command)
	Command.Add(info.Command)
	Command.Add(terms.Command)
	Command.Add(topology.Command)
}
