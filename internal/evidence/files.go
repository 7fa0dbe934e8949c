package evidence

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"excelEvidence/internal/models"
)

// ErrOutputNotWritable aborts a run whose output root cannot hold the run folder.
var ErrOutputNotWritable = errors.New("output root is not writable")

var forbidden = strings.NewReplacer("<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "", "|", "", "?", "", "*", "")

// Sanitize strips characters no file system accepts in a name and trims the result.
func Sanitize(name string) string {
	return strings.TrimSpace(forbidden.Replace(name))
}

// FolderName is the customer folder under the run folder.
func FolderName(c models.CustomerRecord) string {
	return Sanitize(c.Name) + "_" + Sanitize(c.Account)
}

func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// copyFile copies src to dst, keeping the modification time of src.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// fileCount counts the regular files directly inside dir.
func fileCount(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}

// cleanPath strips the quoting call logs wrap paths in. Null markers become "".
func cleanPath(raw string) string {
	p := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(raw))
	switch strings.ToUpper(p) {
	case "NAN", "NONE":
		return ""
	}
	return p
}

// findByBase walks root for a file named like the last element of p.
// Call logs may carry Windows paths, so both separators split.
func findByBase(root, p string) string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if root == "" || base == "" || base == "." || base == "/" {
		return ""
	}
	var found string
	filepath.WalkDir(root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == base {
			found = current
			return fs.SkipAll
		}
		return nil
	})
	return found
}
