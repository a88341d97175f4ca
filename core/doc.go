// Package core contains the canonical claim-case domain contracts,
// entities, and orchestration pipeline. Transport clients, stores, and
// adapters depend on this package; core must not depend on them.
package core
