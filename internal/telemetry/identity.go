package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// IdentityFileName holds the anonymous install id inside the state dir.
const IdentityFileName = "telemetry.json"

type identity struct {
	AnonymousID string `json:"anonymous_id"`
}

// LoadInstallID returns the anonymous install id stored in stateDir,
// generating and persisting one on first use.
func LoadInstallID(fsys afero.Fs, stateDir string) (string, error) {
	path := filepath.Join(stateDir, IdentityFileName)

	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		var id identity
		if err := json.Unmarshal(data, &id); err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
		if id.AnonymousID != "" {
			return id.AnonymousID, nil
		}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	id := identity{AnonymousID: uuid.NewString()}
	if err := fsys.MkdirAll(stateDir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	data, err = json.MarshalIndent(id, "", "  ")
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(fsys, path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return id.AnonymousID, nil
}
