package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// chatThreadFile keeps the one-shot chat thread id inside the state dir, so
// consecutive `taskmate chat "..."` calls share one conversation.
const chatThreadFile = "chat_thread"

// sessionThreadID returns the thread for an interactive session: the
// explicit id when given, otherwise a fresh one per session.
func sessionThreadID(explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	return uuid.NewString()
}

// oneShotThreadID returns the thread for one-shot messages: the explicit id
// when given, otherwise the id persisted in stateDir, created on first use or
// when reset is set.
func oneShotThreadID(fsys afero.Fs, stateDir, explicit string, reset bool) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	path := filepath.Join(stateDir, chatThreadFile)

	if !reset {
		data, err := afero.ReadFile(fsys, path)
		switch {
		case err == nil:
			if id := strings.TrimSpace(string(data)); id != "" {
				return id, nil
			}
		case !os.IsNotExist(err):
			return "", fmt.Errorf("read chat thread: %w", err)
		}
	}

	id := uuid.NewString()
	if err := fsys.MkdirAll(stateDir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("save chat thread: %w", err)
	}
	return id, nil
}
