package git

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// BlobSHA returns the object id git assigns to content, as `git hash-object`
// would print it. Stores use it as their version token.
func BlobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
