package payment

import (
	"strings"

	"github.com/google/uuid"
)

// ManualReference synthesizes a unique provider reference for the
// manual payment path, which settles outside the gateway and has no
// provider-issued id.  The DUMMY- prefix keeps these rows visually
// distinct from gateway references in the ledger.
func ManualReference() string {
	return "DUMMY-" + strings.ToUpper(uuid.NewString())
}
