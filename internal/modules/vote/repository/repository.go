package repository

import (
	"context"
	"errors"

	"anoa.com/feedbackportal/internal/entity"
	"anoa.com/feedbackportal/internal/modules/vote/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult describes one committed toggle.
type ToggleResult struct {
	Previous ledger.State
	Current  ledger.State
	Outcome  ledger.Outcome

	MessageAuthorID *uuid.UUID
	FeedbackID      uuid.UUID
}

type Counts struct {
	Up   int64
	Down int64
}

func (c Counts) Score() int64 {
	return ledger.Score(c.Up, c.Down)
}

type VoteRepository interface {
	Toggle(ctx context.Context, userID, messageID uuid.UUID, kind entity.VoteKind) (*ToggleResult, error)
	CountVotes(ctx context.Context, messageID uuid.UUID) (Counts, error)
	CountVotesForMessages(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]Counts, error)
	GetUserVotes(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (map[uuid.UUID]entity.VoteKind, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Toggle applies the ledger transition for (userID, messageID) in one
// transaction. When a concurrent first vote wins the unique index the
// transaction is replayed once against the row it inserted.
func (r *voteRepository) Toggle(ctx context.Context, userID, messageID uuid.UUID, kind entity.VoteKind) (*ToggleResult, error) {
	result, err := r.toggleOnce(ctx, userID, messageID, kind)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		result, err = r.toggleOnce(ctx, userID, messageID, kind)
	}
	return result, err
}

func (r *voteRepository) toggleOnce(ctx context.Context, userID, messageID uuid.UUID, kind entity.VoteKind) (*ToggleResult, error) {
	var result ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message entity.Message
		if err := tx.Select("id", "feedback_id", "author_id").
			First(&message, "id = ?", messageID).Error; err != nil {
			return err
		}
		result.MessageAuthorID = message.AuthorID
		result.FeedbackID = message.FeedbackID

		// Use Find with slice to avoid "record not found" log noise from GORM's First()
		var existing []entity.Vote
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND message_id = ?", userID, messageID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		result.Previous = ledger.NoVote
		if len(existing) > 0 {
			result.Previous = ledger.StateOf(existing[0].Kind)
		}

		next, outcome, err := ledger.Transition(result.Previous, kind)
		if err != nil {
			return err
		}
		result.Current = next
		result.Outcome = outcome

		nextKind, hasVote := next.Kind()
		switch {
		case len(existing) == 0:
			return tx.Create(&entity.Vote{UserID: userID, MessageID: messageID, Kind: nextKind}).Error
		case !hasVote:
			return tx.Delete(&existing[0]).Error
		default:
			return tx.Model(&existing[0]).Update("kind", nextKind).Error
		}
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

type countRow struct {
	MessageID uuid.UUID
	Up        int64
	Down      int64
}

func countSelect(db *gorm.DB) *gorm.DB {
	return db.Model(&entity.Vote{}).
		Select("message_id, "+
			"COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0) AS up, "+
			"COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0) AS down",
			entity.VoteUp, entity.VoteDown).
		Group("message_id")
}

func (r *voteRepository) CountVotes(ctx context.Context, messageID uuid.UUID) (Counts, error) {
	var rows []countRow
	if err := countSelect(r.db.WithContext(ctx)).
		Where("message_id = ?", messageID).
		Scan(&rows).Error; err != nil {
		return Counts{}, err
	}
	if len(rows) == 0 {
		return Counts{}, nil
	}
	return Counts{Up: rows[0].Up, Down: rows[0].Down}, nil
}

func (r *voteRepository) CountVotesForMessages(ctx context.Context, messageIDs []uuid.UUID) (map[uuid.UUID]Counts, error) {
	counts := make(map[uuid.UUID]Counts, len(messageIDs))
	if len(messageIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	if err := countSelect(r.db.WithContext(ctx)).
		Where("message_id IN ?", messageIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MessageID] = Counts{Up: row.Up, Down: row.Down}
	}
	return counts, nil
}

func (r *voteRepository) GetUserVotes(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) (map[uuid.UUID]entity.VoteKind, error) {
	votes := make(map[uuid.UUID]entity.VoteKind)
	if userID == uuid.Nil || len(messageIDs) == 0 {
		return votes, nil
	}

	var rows []entity.Vote
	if err := r.db.WithContext(ctx).
		Select("message_id", "kind").
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, v := range rows {
		votes[v.MessageID] = v.Kind
	}
	return votes, nil
}
