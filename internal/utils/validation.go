package utils

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ValidateURL checks that raw is an absolute http(s) URL
func ValidateURL(raw, fieldName string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s '%s': scheme must be http or https", fieldName, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s '%s': host is required", fieldName, raw)
	}
	return nil
}

// ValidateRowLimit checks that n is within 1..max
func ValidateRowLimit(n, max int) error {
	if n < 1 || n > max {
		return fmt.Errorf("row limit %d out of range (expected 1-%d)", n, max)
	}
	return nil
}

// ValidateFileName checks that name refers to a file directly inside the data directory
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid file name '%s'", name)
	}
	return nil
}

// CheckFileExists returns true if the file exists
func CheckFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
