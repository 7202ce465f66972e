package raw

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
)

var errHostRootNotFound = errors.New("no /proc folder found on the system")

type fileOpenFn func(string) (io.ReadCloser, error)

func defaultFileOpenFn(filePath string) (io.ReadCloser, error) {
	return os.Open(filePath)
}

// DetectHostRoot returns a path that is located on the hostRoot folder of the host and the `/host` folder
// on the integrations. If they existed in both hostRoot and /host, returns the /host path,
// assuming the integration is running in a container
func DetectHostRoot(hostRoot string, pathExists func(string) bool) (string, error) {
	if hostRoot == "" {
		hostRoot = "/host"
	}

	defaultHostRoot := "/"

	for _, hostRoot := range []string{hostRoot, defaultHostRoot} {
		if pathExists(filepath.Join(hostRoot, "/proc")) {
			return hostRoot, nil
		}
	}

	return "", errHostRootNotFound
}

// PathExists reports whether the path can be stat'ed.
func PathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func dirExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// getEnv will get the environment variable and return a string containing all extra values provided
// joined with the environment variable. If environment variable is not set, a default value will be used.
func getEnv(name, defaultValue string, combineWith ...string) string {
	value := os.Getenv(name)
	if value == "" {
		value = defaultValue
	}

	if len(combineWith) > 0 {
		value += path.Join(combineWith...)
	}

	return value
}

// getFirstExistingDir will return the first path in the array that is an accessible directory.
func getFirstExistingDir(paths []string) (result string, found bool) {
	for _, path := range paths {
		if dirExists(path) {
			result = path
			found = true
			break
		}
	}
	return
}
