package memory

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
)

//go:embed seed.json
var seedFS embed.FS

// seedSnapshot decodes the matrix snapshot embedded at build time. The file
// uses the same shape as the upload pipeline's output, so regenerating it is
// a matter of running `rbaciam process-csv` against the current spreadsheet.
func seedSnapshot() (matrix.Snapshot, error) {
	raw, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return matrix.Snapshot{}, fmt.Errorf("read embedded seed: %w", err)
	}

	var m matrix.Matrix
	if err := json.Unmarshal(raw, &m); err != nil {
		return matrix.Snapshot{}, fmt.Errorf("decode embedded seed: %w", err)
	}
	m.Normalize()

	// The seed carries no timestamp of its own; it predates any upload.
	return matrix.Snapshot{Matrix: m, UpdatedAt: time.Time{}}, nil
}
