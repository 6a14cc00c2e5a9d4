package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

var requeueable = []string{
	string(domain.StatusPending),
	string(domain.StatusFailed),
	string(domain.StatusExported),
}

func (r *implRepository) Schedule(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&Meeting{}).
		Where("id = ? AND status IN ?", id, requeueable).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusScheduled),
			"last_error": "",
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return domain.PersistenceError("schedule meeting", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	snap, err := r.Status(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("meeting %s is %s: %w", id, snap.Status, domain.ErrAlreadyQueued)
}

func (r *implRepository) Claim(ctx context.Context, id string) (domain.Job, error) {
	if err := r.transition(ctx, r.db.WithContext(ctx), id, domain.StatusScheduled, domain.StatusProcessing); err != nil {
		return domain.Job{}, err
	}
	return r.GetMeeting(ctx, id)
}

func (r *implRepository) Advance(ctx context.Context, id string, from, to domain.Status, a domain.Artifacts) error {
	if !domain.CanTransition(from, to) || to == domain.StatusFailed || to == domain.StatusScheduled {
		return fmt.Errorf("advance %s -> %s: %w", from, to, domain.ErrStatusConflict)
	}

	// The stored protocol sub-state always follows the job status.
	var protocol *domain.Protocol
	if a.Protocol != nil {
		ps, ok := domain.ProtocolStatusFor(to)
		if !ok {
			return fmt.Errorf("advance %s -> %s with a protocol: %w", from, to, domain.ErrStatusConflict)
		}
		p := *a.Protocol
		p.Status = ps
		protocol = &p
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func(v interface{}) error {
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
		}
		if a.Transcript != nil {
			m := toTranscriptModel(id, *a.Transcript)
			if err := upsert(&m); err != nil {
				return domain.PersistenceError("save transcript", err)
			}
		}
		if a.Agenda != nil {
			m := Agenda{MeetingID: id, Text: a.Agenda.Text}
			if err := upsert(&m); err != nil {
				return domain.PersistenceError("save agenda", err)
			}
		}
		if protocol != nil {
			m := toProtocolModel(id, *protocol)
			if err := upsert(&m); err != nil {
				return domain.PersistenceError("save protocol", err)
			}
			if to == domain.StatusExported && protocol.Document != nil {
				if err := tx.Model(&Meeting{}).Where("id = ?", id).Updates(map[string]interface{}{
					"document_id":  protocol.Document.ID,
					"document_url": protocol.Document.URL,
				}).Error; err != nil {
					return domain.PersistenceError("save document reference", err)
				}
			}
		}
		return r.transition(ctx, tx, id, from, to)
	})
	return err
}

// transition performs the guarded status update. Zero affected rows means
// the job moved on or was failed by someone else.
func (r *implRepository) transition(ctx context.Context, db *gorm.DB, id string, from, to domain.Status) error {
	res := db.Model(&Meeting{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return domain.PersistenceError("update status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("meeting %s not in status %s: %w", id, from, domain.ErrStatusConflict)
	}
	r.l.Debug(ctx, "Meeting %s: %s -> %s", id, from, to)
	return nil
}

// Fail marks a non-terminal job failed with a user-facing reason.
func (r *implRepository) Fail(ctx context.Context, id string, reason string) error {
	res := r.db.WithContext(ctx).Model(&Meeting{}).
		Where("id = ? AND status NOT IN ?", id, []string{string(domain.StatusFailed), string(domain.StatusExported)}).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusFailed),
			"last_error": reason,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return domain.PersistenceError("fail meeting", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Status(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("meeting %s already terminal: %w", id, domain.ErrStatusConflict)
	}
	return nil
}

// ResetArtifacts removes derived artifacts ahead of a fresh run.
func (r *implRepository) ResetArtifacts(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&Transcript{}, &Agenda{}, &Protocol{}} {
			if err := tx.Where("meeting_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Meeting{}).Where("id = ?", id).Updates(map[string]interface{}{
			"document_id":  "",
			"document_url": "",
		}).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.PersistenceError("reset artifacts", err)
	}
	return nil
}
