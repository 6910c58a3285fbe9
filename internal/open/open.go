package open

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Zuo-Peng/compdb/internal/store"
)

// OpenEntry opens the source file of a recorded entry in $EDITOR.
func OpenEntry(db *store.DB, key string) error {
	runID, seq, err := store.ParseKey(key)
	if err != nil {
		return err
	}
	entry, err := db.GetEntry(runID, seq)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("entry not found: %s", key)
	}

	if _, err := os.Stat(entry.File); err != nil {
		return fmt.Errorf("file not found: %s", entry.File)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return openInEditor(editor, entry.File)
}

func openInEditor(editor, filePath string) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":1")
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
