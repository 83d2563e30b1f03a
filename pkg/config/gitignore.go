package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// EnsureIgnored makes sure the .xl directory is listed in projectDir's
// .gitignore so saved expansion state stays out of version control. It
// creates .gitignore if needed and leaves existing content untouched.
func EnsureIgnored(projectDir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	path := filepath.Join(projectDir, ".gitignore")
	present, err := isIgnored(path, DirName)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if present {
		return nil
	}
	return appendPattern(path, DirName+"/")
}

// isIgnored reports whether a non-comment line of the file at path covers
// dir.
func isIgnored(path, dir string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversDir(line, dir) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversDir matches dir, dir/, dir/*, dir/** and dir/**/*, with or without a
// leading slash.
func coversDir(line, dir string) bool {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(line, "/"), dir)
	if !ok {
		return false
	}
	switch rest {
	case "", "/", "/*", "/**", "/**/*":
		return true
	}
	return false
}

func appendPattern(path, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	const header = "# xl local config and state\n"
	var toWrite string
	if len(content) == 0 {
		toWrite = header + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n" + header + pattern + "\n"
	}
	_, err = file.WriteString(toWrite)
	return err
}
