package scaffold

import (
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// commitAuthor signs commits made on generated trees.
var commitAuthor = object.Signature{Name: "agentforge", Email: "agentforge@localhost"}

// commitTree records every file under dir in a commit, initialising the
// repository on first use. It returns the empty hash when nothing changed.
func commitTree(dir, message string, when time.Time) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		repo, err = gogit.PlainInit(dir, false)
	}
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	if err := w.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage files: %w", err)
	}

	author := commitAuthor
	author.When = when
	hash, err := w.Commit(message, &gogit.CommitOptions{Author: &author})
	if errors.Is(err, gogit.ErrEmptyCommit) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}
