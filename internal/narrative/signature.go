package narrative

import (
	"crypto/sha1" //nolint:gosec // content address, not a security boundary
	"encoding/hex"
	"fmt"
)

// DefaultPromptVersion tags narratives produced by the current prompts.
// Changing either prompt must change the version so cached text is
// regenerated.
const DefaultPromptVersion = "v5-assertive-collateral"

// Signature is the cache address of an account's narrative.
func Signature(accountID int, insight, promptVersion string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d|%s|%s", accountID, insight, promptVersion))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
