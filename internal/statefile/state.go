package statefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"PadelTracker/internal/model"
)

// Saved is the last known dashboard content persisted across restarts.
type Saved struct {
	Snapshot  *model.MarketData       `json:"snapshot,omitempty"`
	Analysis  *model.AIAnalysisResult `json:"analysis,omitempty"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// LoadState reads the saved state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*Saved, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Saved{}, nil
		}
		return nil, err
	}
	var state Saved
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the state to a JSON file, replacing it atomically.
func SaveState(filePath string, state *Saved) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}
