package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/prusikmapping/GeositeFramework/internal/schema"
)

// Discoverer finds plugins under a site's plugin source directories.
type Discoverer struct {
	validator *schema.Validator
}

// NewDiscoverer creates a Discoverer that validates plugin descriptors with
// the given validator.
func NewDiscoverer(v *schema.Validator) *Discoverer {
	return &Discoverer{validator: v}
}

// Discover enumerates the immediate subdirectories of each source directory,
// in source-directory order then lexical entry order, and returns one
// Descriptor per plugin folder. Non-directory entries are skipped.
//
// Every plugin folder must contain the entry script; a folder without one
// aborts discovery with a MissingEntryPointError. A folder name appearing
// under two source directories aborts with a DuplicatePluginError. Reads
// files only, no other side effects.
func (d *Discoverer) Discover(dirs []string) ([]Descriptor, error) {
	descriptors := []Descriptor{}
	seen := map[string]string{}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading plugin directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if firstDir, dup := seen[name]; dup {
				return nil, &DuplicatePluginError{Folder: name, FirstDir: firstDir, SecondDir: dir}
			}
			desc, err := d.load(dir, name)
			if err != nil {
				return nil, err
			}
			seen[name] = dir
			descriptors = append(descriptors, desc)
		}
	}
	return descriptors, nil
}

func (d *Discoverer) load(sourceDir, name string) (Descriptor, error) {
	folder := filepath.Join(sourceDir, name)

	entry := filepath.Join(folder, EntryPointFile)
	if _, err := os.Stat(entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Descriptor{}, &MissingEntryPointError{Folder: name, Dir: folder}
		}
		return Descriptor{}, fmt.Errorf("checking entry point %s: %w", entry, err)
	}

	desc := Descriptor{
		FolderName:  name,
		ModuleID:    path.Join(filepath.ToSlash(name), entryModule),
		DisplayName: DisplayName(name),
		Dir:         folder,
	}

	descriptorPath := filepath.Join(folder, DescriptorFile)
	switch _, err := os.Stat(descriptorPath); {
	case err == nil:
		cfg, err := d.validator.LoadAndValidate(descriptorPath, schema.KindPlugin)
		if err != nil {
			return Descriptor{}, err
		}
		desc.Config = cfg
	case errors.Is(err, fs.ErrNotExist):
		// Descriptor is optional.
	default:
		return Descriptor{}, fmt.Errorf("checking descriptor %s: %w", descriptorPath, err)
	}

	return desc, nil
}
