package executor

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveCommand picks the program to run: the explicit command when set,
// otherwise the task name (with .exe on Windows). A bare name that exists
// as a file in dir is returned as ./name so it does not go through PATH.
func ResolveCommand(task, command, dir string) string {
	name := command
	if name == "" {
		name = task
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return name
	}
	if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
		return "." + string(filepath.Separator) + name
	}
	return name
}
