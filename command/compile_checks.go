package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SubmitClaimMessage]       = (*SubmitClaimCommand)(nil)
	_ gocmd.Commander[PruneAuditRecordsMessage] = (*PruneAuditRecordsCommand)(nil)
)
