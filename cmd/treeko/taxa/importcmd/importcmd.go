// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package importcmd implements a command to import
// a taxonomy into a taxonomy database
// of a treeko project.
package importcmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

var Command = &command.Command{
	Usage: `import [--db <database-file>]
	<project-file> <taxonomy-file>`,
	Short: "import a taxonomy into a database",
	Long: `
Command import reads a taxonomy from a tab-delimited file, and stores it into
the taxonomy database of a treeko project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created. The second argument is
the taxonomy file. Type 'treeko help taxonomy-files' to learn more about
taxonomy files.

By default, the taxonomy database currently defined in the project will be
used. If the project does not have a database, a new one will be created with
the name 'taxonomy.db'. A different database can be defined with the flag
--db. Taxa already in the database will be replaced.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var dbFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&dbFile, "db", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting taxonomy file")
	}

	p, err := openProject(args[0])
	if err != nil {
		return err
	}

	db, err := readTaxonomy(args[1])
	if err != nil {
		return err
	}

	if dbFile == "" {
		dbFile = p.Path(project.TaxDB)
		if dbFile == "" {
			dbFile = "taxonomy.db"
		}
	}

	s, err := taxonomy.Open(dbFile)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Import(db); err != nil {
		return fmt.Errorf("on database %q: %v", dbFile, err)
	}
	n, err := s.Len()
	if err != nil {
		return fmt.Errorf("on database %q: %v", dbFile, err)
	}
	fmt.Fprintf(c.Stderr(), "# imported %d taxa [database: %d taxa]\n", db.Len(), n)

	p.Add(project.TaxDB, dbFile)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

func readTaxonomy(name string) (*taxonomy.DB, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := taxonomy.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return db, nil
}
