package catalog

import (
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/teranos/streamgen/errors"
)

// ImportPath returns the import path a package in dir would have, derived
// from the nearest go.mod above it. dir does not need to exist yet.
func ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", dir)
	}

	for root := abs; ; {
		data, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err == nil {
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", errors.Newf("%s has no module directive", filepath.Join(root, "go.mod"))
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return "", errors.Wrapf(err, "failed to resolve %s", dir)
			}
			importPath := path.Join(modPath, filepath.ToSlash(rel))
			if err := module.CheckImportPath(importPath); err != nil {
				return "", errors.Wrapf(err, "output directory %s", dir)
			}
			return importPath, nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrap(err, "failed to read go.mod")
		}

		parent := filepath.Dir(root)
		if parent == root {
			return "", errors.WithHint(errors.Newf("no go.mod found above %s", dir),
				"set generate.package_path in streamgen.toml")
		}
		root = parent
	}
}
