package codegen

import (
	"os"
	"path/filepath"
)

// ProjectDirs locates the project declaring a generation unit.
type ProjectDirs struct {
	// ProjectDir is the directory of the declaring project.
	ProjectDir string `json:"projectDir"`
	// RootDir is the top-level directory of a multi-module layout. It equals
	// ProjectDir for single-module projects.
	RootDir string `json:"rootDir"`
}

// ValidateOutputDir returns a *DestructiveOutputError when outputDir is the
// project directory or the root directory. Paths are compared after cleaning,
// and as files when both exist so that symlinked spellings are caught too.
func ValidateOutputDir(outputDir string, dirs ProjectDirs) error {
	for _, protected := range []struct {
		kind ProtectedDir
		dir  string
	}{
		{kind: ProtectedProjectDir, dir: dirs.ProjectDir},
		{kind: ProtectedRootDir, dir: dirs.RootDir},
	} {
		if protected.dir == "" {
			continue
		}

		if sameDir(outputDir, protected.dir) {
			return &DestructiveOutputError{
				OutputDir: outputDir,
				Protected: protected.kind,
				Dir:       protected.dir,
			}
		}
	}

	return nil
}

func sameDir(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}

	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}

	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(infoA, infoB)
}
