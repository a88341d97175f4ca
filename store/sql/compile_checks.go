package sqlstore

import "github.com/goliatone/go-reclaim/core"

var (
	_ core.AuditTrailStore        = (*CachedAuditStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
