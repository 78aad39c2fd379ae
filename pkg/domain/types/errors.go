package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify a failure so that one process-level handler can map it
// to an exit code and operators can script on the distinction.
var (
	// TagConfig marks configuration file errors (missing, unparsable, invalid)
	TagConfig = goerr.NewTag("config")
	// TagAuthNetwork marks transport failures during the sign-in handshake
	TagAuthNetwork = goerr.NewTag("auth_network")
	// TagAuthRejected marks credentials refused by the intra
	TagAuthRejected = goerr.NewTag("auth_rejected")
	// TagSlotQuery marks a slot query that exhausted its retry budget
	TagSlotQuery = goerr.NewTag("slot_query")
	// TagNotify marks a notification delivery failure (non-fatal)
	TagNotify = goerr.NewTag("notify")
)

// Exit codes of the slotwatch process. Failed sign-in gets its own code so
// that operators can alert on credential rotation separately from generic
// network failures.
const (
	ExitCodeOK           = 0
	ExitCodeFatal        = 1
	ExitCodeAuthRejected = 42
)

// ExitCode resolves the process exit code for an error
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	if goerr.HasTag(err, TagAuthRejected) {
		return ExitCodeAuthRejected
	}
	return ExitCodeFatal
}
