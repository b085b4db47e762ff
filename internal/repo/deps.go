package repo

import (
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// Dependencies bundles the shared infrastructure required by repository
// implementations.
type Dependencies struct {
	DBConn sqlx.SqlConn
	// Now stamps created_at/updated_at. Defaults to time.Now.
	Now func() time.Time
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Chats ChatsRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Set{
		Chats: newChatsRepo(deps),
	}, nil
}
