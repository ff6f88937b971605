package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath swaps the extension of inPath for ext, or appends ext when
// inPath has none.
func OutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}

// ReadSource loads a program file and returns its text and absolute path.
func ReadSource(path string) (src string, fullPath string, err error) {
	fullPath, _, err = GetPathInfo(path)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), fullPath, nil
}
