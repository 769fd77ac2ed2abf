package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	outputLockDirName   = ".generate.lock"
	outputLockOwnerFile = "owner.json"
)

// OutputLock keeps a second generator process out of an output directory.
type OutputLock struct {
	lockDir string
}

type outputLockOwner struct {
	PID       int    `json:"pid"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func AcquireOutputLock(outputDir, runID string) (OutputLock, error) {
	target := strings.TrimSpace(outputDir)
	if target == "" {
		return OutputLock{}, fmt.Errorf("output directory is required")
	}

	lockDir := filepath.Join(target, outputLockDirName)
	err := os.Mkdir(lockDir, 0o755)
	if err != nil && os.IsExist(err) && reclaimStaleLock(lockDir) {
		err = os.Mkdir(lockDir, 0o755)
	}
	if err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, outputLockOwnerFile)
			var owner outputLockOwner
			if readErr := readJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return OutputLock{}, fmt.Errorf(
					"output directory is locked: %s (pid=%d run_id=%s created_at=%s host=%s)",
					target, owner.PID, owner.RunID, owner.CreatedAt, owner.Hostname,
				)
			}
			return OutputLock{}, fmt.Errorf("output directory is locked: %s", target)
		}
		return OutputLock{}, fmt.Errorf("acquire output lock for %s: %w", target, err)
	}

	owner := outputLockOwner{
		PID:       os.Getpid(),
		RunID:     runID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, outputLockOwnerFile)
	if err := writeJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return OutputLock{}, fmt.Errorf("write output lock owner for %s: %w", target, err)
	}

	return OutputLock{lockDir: lockDir}, nil
}

func (l OutputLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, outputLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release output lock %s: %w", l.lockDir, err)
	}
	return nil
}

// reclaimStaleLock removes a lock left by a process on this host that no
// longer exists. Locks from other hosts or with an unreadable owner are kept.
func reclaimStaleLock(lockDir string) bool {
	ownerPath := filepath.Join(lockDir, outputLockOwnerFile)
	var owner outputLockOwner
	if err := readJSON(ownerPath, &owner); err != nil || owner.PID <= 0 {
		return false
	}
	if owner.Hostname != hostnameOrUnknown() || processAlive(owner.PID) {
		return false
	}
	_ = os.Remove(ownerPath)
	if err := os.Remove(lockDir); err != nil && !os.IsNotExist(err) {
		return false
	}
	return true
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON for %s: %w", path, err)
	}
	data = append(data, '\n')
	return WriteBytes(path, data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse JSON %s: %w", path, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
