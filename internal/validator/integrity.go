package validator

import (
	"fmt"
	"os"

	"github.com/clintcan/lecturebench/internal/errkind"
	"github.com/clintcan/lecturebench/internal/obslog"
)

// candidatePaths returns the file locations checked for peer i, matching
// the layout the orchestrator's endpoints write the received artifact to
// (spec.md §4.5.2): the origin's own copy, or a relayed/leaf copy named
// after its upstream source.
func candidatePaths(peerIndex int, isOrigin bool) []string {
	if isOrigin {
		return []string{"/app/mydocument.pdf"}
	}
	return []string{
		"/app/receivedFromOrigin.pdf",
		fmt.Sprintf("/app/receivedFrom-%d.pdf", peerIndex),
	}
}

// CheckIntegrity verifies that the artifact delivered to a peer exists at
// one of its candidate paths and matches expectedHash, returning
// errkind.MissingArtifact or errkind.HashMismatch on failure (spec.md
// §4.5.2).
func CheckIntegrity(peerName string, peerIndex int, isOrigin bool, expectedHash string) error {
	var lastErr error
	for _, path := range candidatePaths(peerIndex, isOrigin) {
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		ok, err := obslog.Verify(f, expectedHash)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("validator: %s integrity check at %s: %w", peerName, path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("validator: %s closing %s: %w", peerName, path, closeErr)
		}
		if !ok {
			return fmt.Errorf("%w: %s artifact at %s does not match expected hash", errkind.HashMismatch, peerName, path)
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no artifact at any candidate path: %v", errkind.MissingArtifact, peerName, lastErr)
}
