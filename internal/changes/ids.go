package changes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from the fingerprint hash.
const idLength = 12

// mintID creates the external handle for a record: a short content-derived
// fingerprint salted with a random UUID so two records staged for the same
// span in the same instant still get distinct handles. Minted exactly once
// at staging and stored on the record, never recomputed.
func mintID(file string, kind Kind, section Section) string {
	seed := fmt.Sprintf("%s:%s:%d-%d:%s", file, kind, section.Start, section.End, uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:idLength]
}
