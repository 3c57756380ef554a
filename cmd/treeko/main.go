// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Treeko is a tool for the analysis of gene family trees
// using speciation subtrees.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treeko/cmd/treeko/analyze"
	"github.com/js-arias/treeko/cmd/treeko/prj"
	"github.com/js-arias/treeko/cmd/treeko/split"
	"github.com/js-arias/treeko/cmd/treeko/taxa"
)

var app = &command.Command{
	Usage: "treeko <command> [<argument>...]",
	Short: "a tool for the analysis of gene family trees",
}

func init() {
	app.Add(analyze.Command)
	app.Add(prj.Command)
	app.Add(split.Command)
	app.Add(taxa.Command)
}

func main() {
	app.Main()
}
