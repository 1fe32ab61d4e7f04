package plugin

import "fmt"

// MissingEntryPointError reports a plugin folder without the required entry
// script. Discovery aborts on the first one found.
type MissingEntryPointError struct {
	// Folder is the plugin folder name.
	Folder string
	// Dir is the absolute path of the offending folder.
	Dir string
}

func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("plugin %q has no %s entry point in %s", e.Folder, EntryPointFile, e.Dir)
}

// DuplicatePluginError reports the same plugin folder name appearing in more
// than one plugin source directory. Folder names are the plugin identity and
// must be unique across a site.
type DuplicatePluginError struct {
	Folder    string
	FirstDir  string
	SecondDir string
}

func (e *DuplicatePluginError) Error() string {
	return fmt.Sprintf("plugin folder %q found in both %s and %s", e.Folder, e.FirstDir, e.SecondDir)
}

// ConflictingUseClauseError reports two plugins declaring the same use
// clause with different values. Both raw declarations are carried so the
// operator can see exactly what disagrees.
type ConflictingUseClauseError struct {
	Clause string
	First  string
	Second string
}

func (e *ConflictingUseClauseError) Error() string {
	return fmt.Sprintf("conflicting use clause %q: %s vs %s", e.Clause, e.First, e.Second)
}
