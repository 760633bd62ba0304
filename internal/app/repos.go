package app

import (
	"gorm.io/gorm"

	chatrepo "github.com/dealgrid/dealgrid-backend/internal/data/repos/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

type Repos struct {
	Threads  chatrepo.ThreadRepo
	Messages chatrepo.MessageRepo
	Typing   chatrepo.TypingRepo
	Markers  chatrepo.ReadMarkerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Threads:  chatrepo.NewThreadRepo(db, log),
		Messages: chatrepo.NewMessageRepo(db, log),
		Typing:   chatrepo.NewTypingRepo(db, log),
		Markers:  chatrepo.NewReadMarkerRepo(db, log),
	}
}
