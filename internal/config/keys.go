// This file expands the configured PIN sources into the run's key set.

package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/result"
)

// Keys expands the configured PIN sources into the key set of the run, in
// order: the explicit comma list, the PIN file, the PIN range. Duplicates
// are preserved; each submitted key produces its own record.
func (c AppConfig) Keys() ([]result.Key, error) {
	term := c.TermValue()
	var keys []result.Key

	for _, pin := range splitList(c.PINList) {
		keys = append(keys, result.Key{PIN: pin, Term: term})
	}

	if c.PINFile != "" {
		pins, err := readPINFile(c.PINFile)
		if err != nil {
			return nil, err
		}
		for _, pin := range pins {
			keys = append(keys, result.Key{PIN: pin, Term: term})
		}
	}

	if c.RangeBase != "" {
		for i := c.RangeStart; i < c.RangeStart+c.RangeCount; i++ {
			keys = append(keys, result.Key{
				PIN:  fmt.Sprintf("%s%03d", c.RangeBase, i),
				Term: term,
			})
		}
	}

	if len(keys) == 0 {
		return nil, apperrors.NewConfigError("no PINs to process: set -pins, -pins-file, or -range-base")
	}
	return keys, nil
}

func splitList(list string) []string {
	var pins []string
	for _, part := range strings.Split(list, ",") {
		if pin := strings.TrimSpace(part); pin != "" {
			pins = append(pins, pin)
		}
	}
	return pins
}

func readPINFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot read pins-file: %v", err)
	}
	defer f.Close()

	var pins []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if pin := strings.TrimSpace(scanner.Text()); pin != "" {
			pins = append(pins, pin)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewConfigError("reading pins-file: %v", err)
	}
	return pins, nil
}
