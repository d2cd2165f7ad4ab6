package main

import (
	"os"

	"github.com/matsen/litsurvey/internal/importer"
	"github.com/matsen/litsurvey/internal/record"
	"github.com/matsen/litsurvey/internal/storage"
)

// expandTablePaths replaces directory arguments with the tables inside them.
func expandTablePaths(args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		inDir, err := storage.ListTables(arg)
		if err != nil {
			log.WithError(err).WithField("path", arg).Error("listing directory")
			continue
		}
		paths = append(paths, inDir...)
	}
	return paths
}

// loadTables reads every table named by args, logging and skipping the ones
// that cannot be read.
func loadTables(args []string) []record.Table {
	var tables []record.Table
	for _, path := range expandTablePaths(args) {
		table, err := importer.LoadFile(path, importer.KindAuto)
		if err != nil {
			log.WithError(err).WithField("path", path).Error("skipping unreadable table")
			continue
		}
		tables = append(tables, table)
	}
	return tables
}
