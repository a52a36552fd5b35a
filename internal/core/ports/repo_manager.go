package ports

import "github.com/syscoin/sysasset/internal/core/domain"

type RepoManager interface {
	Journal() domain.JournalRepository
	Close()
}
