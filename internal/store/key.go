package store

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatKey builds the "<runID>:<seq>" key used on the command line.
func FormatKey(runID string, seq int) string {
	return runID + ":" + strconv.Itoa(seq)
}

// ParseKey splits an entry key.
func ParseKey(key string) (string, int, error) {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid entry key %q: want <run>:<seq>", key)
	}
	seq, err := strconv.Atoi(key[i+1:])
	if err != nil || seq < 0 {
		return "", 0, fmt.Errorf("invalid entry key %q: bad sequence number", key)
	}
	return key[:i], seq, nil
}
