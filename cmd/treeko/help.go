// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(colorKeyGuide)
	app.Add(projectsGuide)
	app.Add(taxonomyFilesGuide)
	app.Add(treeFilesGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
Treeko requires several files to read and process gene trees. To reduce the
burden of keeping track of many files, a single project file is used to hold
the reference of all files required in the analysis. This guide explains the
structure of the file, but most of the time, the best and most secure way to
edit or view this file is by using the command 'treeko prj'.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# treeko project files
	dataset	path
	trees	gene-trees.nwk
	reference	species.nwk
	taxdb	taxonomy.db
	names	names.tab
	colors	colors.tab

The valid file types are:

- Gene trees. Defined by the dataset keyword "trees". This file contains one
  or more gene trees, either in Newick format, or as time calibrated trees in
  a tab-delimited file.
- Reference species tree. Defined by the dataset keyword "reference". This
  file contains the species tree used to score the speciation subtrees of the
  gene trees. Only the first tree of the file will be used.
- Taxonomy table. Defined by the dataset keyword "taxonomy". This file
  contains a taxonomy in the form of a tab-delimited file.
- Taxonomy database. Defined by the dataset keyword "taxdb". A SQLite
  database with a taxonomy. If defined, it will be used instead of the
  taxonomy table. The recommended way to build a taxonomy database is by
  using the command 'treeko taxa import'.
- Terminal names. Defined by the dataset keyword "names". A tab-delimited file
  with the taxon identifier of each gene tree terminal. If it is not defined,
  terminals without a taxon identifier will use the species code of their
  names.
- Color keys. Defined by the dataset keyword "colors". A tab-delimited file
  with the colors used to draw the taxonomic groups.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
In Treeko, gene trees are usually stored in Newick (parenthetical) format.
A file can contain one or more trees, each one ended by a semicolon. The first
tree of a file is named after the file name (without extension), and further
trees are named with the file name followed by the number of the tree.

Terminal names must be unique. Numbers used as labels of internal nodes are read
as support values. The taxon identifier of a terminal can be defined with an
NHX comment using the keys "taxid" or "T", and the species name using the key
"S", for example:

	((BRCA2_HUMAN[&&NHX:taxid=9606],BRCA2_PANTR[&&NHX:taxid=9598]),BRCA2_MOUSE);

Trees can also be stored as time calibrated trees in a tab-delimited file with
the following columns:

	-tree    for the name of the tree.
	-node    for the ID of the node.
	-parent  for of ID of the parent node (-1 is used for the root).
	-age     the age of the node (in years).
	-taxon   the taxonomic name of the node.

Here is an example file:

	# time calibrated phylogenetic tree
	tree	node	parent	age	taxon
	hominids	0	-1	9000000
	hominids	1	0	0	Pongo abelii
	hominids	2	0	7000000
	hominids	3	2	0	Homo sapiens
	hominids	4	2	0	Pan troglodytes

Time calibrated trees are commonly used as reference species trees.
	`,
}

var taxonomyFilesGuide = &command.Command{
	Usage: "taxonomy-files",
	Short: "about taxonomy files",
	Long: `
A taxonomy is used to define the lineage of each gene tree terminal. The
groups of the lineage are tested for monophyly in each speciation subtree.

A taxonomy file is a tab-delimited file with the following columns:

	- taxid   the identifier of the taxon.
	- parent  the identifier of the parent taxon.
	- name    the scientific name of the taxon.
	- track   the comma separated list of identifiers from the taxon to
	          the root of the taxonomy.

Here is an example file:

	taxid	parent	name	track
	1		root	1
	9604	1	Hominidae	9604,1
	9606	9604	Homo sapiens	9606,9604,1
	9598	9604	Pan troglodytes	9598,9604,1

A taxonomy file can be imported into a SQLite database with the command
'treeko taxa import'. Taxa not found in the taxonomy are defined as a group
of their own, with the name "Unknown".

The taxon identifiers of the gene tree terminals can be set with a names file,
a tab-delimited file with the following columns:

	- name   the name of the terminal.
	- taxid  the taxon identifier of the terminal.

Here is an example file:

	name	taxid
	BRCA2_HUMAN	9606
	BRCA2_PANTR	9598
	`,
}

var colorKeyGuide = &command.Command{
	Usage: "color-keys",
	Short: "about color keys file",
	Long: `
When drawing a gene tree, the broken taxonomic groups of a terminal are drawn
with a color. Colors for each group are stored in a color key file, so the
colors are kept between different drawings. Groups without a color will be
assigned a random color, and stored in the color key file of the project.

A color key file is a tab-delimited file with the following columns:

	-group  the name of the taxonomic group, it is case insensitive.
	-color  a RGB value separated by commas, for example, "125,132,148".

Any other columns will be ignored.

Here is an example of a key file:

	group	color
	mammalia	0, 26, 51
	hominidae	68, 167, 196
	unknown	229, 229, 224
	`,
}
