package filing

import (
	"os"
	"path/filepath"
	"strings"
)

// DepositResolution is the outcome of a deposit-folder probe.
type DepositResolution struct {
	FinalPath string `json:"final_path"`
	Used      bool   `json:"used"`
}

// ResolveDepositFolder decides the final write directory for a filing
// operation. With an empty deposit name the base path is used as-is. With a
// configured name the directory basePath/<name> is probed — never created;
// pre-creating a deposit subfolder per client is the user's optional choice.
// When the probe fails the base path is used silently, so a deposit
// subfolder created later is picked up on the next save without any
// reconfiguration.
//
// depositName is a logical path: segments may be joined with '/' or '.'
// (both conventions appear in stored settings), and resolve to nested
// directories under the base path.
func ResolveDepositFolder(basePath, depositName string) DepositResolution {
	if depositName == "" {
		return DepositResolution{FinalPath: basePath, Used: false}
	}

	candidate := filepath.Join(basePath, depositRelPath(depositName))
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return DepositResolution{FinalPath: basePath, Used: false}
	}
	return DepositResolution{FinalPath: candidate, Used: true}
}

// depositRelPath converts a logical deposit-folder path into a relative
// filesystem path. '/' and '.' both act as segment separators; empty
// segments are dropped.
func depositRelPath(name string) string {
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '.'
	})
	return filepath.Join(segments...)
}
