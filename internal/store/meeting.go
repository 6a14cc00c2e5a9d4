package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

func (r *implRepository) CreateMeeting(ctx context.Context, job domain.Job) (domain.Job, error) {
	if job.Status == "" {
		job.Status = domain.StatusPending
	}
	meeting := toMeetingModel(job)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meeting).Error; err != nil {
			return err
		}
		for i, p := range job.Participants {
			participant := Participant{
				ID:          p.ID,
				Name:        p.Name,
				VoiceSample: p.VoiceSample,
				Email:       p.Email,
				Tag:         p.Tag,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&participant).Error; err != nil {
				return err
			}
			link := MeetingParticipant{MeetingID: meeting.ID, ParticipantID: p.ID, Position: i}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Job{}, domain.PersistenceError("create meeting", err)
	}

	return r.GetMeeting(ctx, meeting.ID)
}

func (r *implRepository) GetMeeting(ctx context.Context, id string) (domain.Job, error) {
	db := r.db.WithContext(ctx)

	var meeting Meeting
	if err := db.First(&meeting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Job{}, fmt.Errorf("meeting %s: %w", id, domain.ErrNotFound)
		}
		return domain.Job{}, domain.PersistenceError("get meeting", err)
	}

	participants, err := r.participants(db, id)
	if err != nil {
		return domain.Job{}, domain.PersistenceError("get participants", err)
	}
	return toJob(meeting, participants), nil
}

func (r *implRepository) participants(db *gorm.DB, meetingID string) ([]Participant, error) {
	var out []Participant
	err := db.Model(&Participant{}).
		Select("participants.*").
		Joins("JOIN meeting_participants ON meeting_participants.participant_id = participants.id").
		Where("meeting_participants.meeting_id = ?", meetingID).
		Order("meeting_participants.position").
		Find(&out).Error
	return out, err
}

func (r *implRepository) ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Job, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	var meetings []Meeting
	if err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Order("created_at").
		Find(&meetings).Error; err != nil {
		return nil, domain.PersistenceError("list meetings", err)
	}

	jobs := make([]domain.Job, 0, len(meetings))
	for _, m := range meetings {
		participants, err := r.participants(r.db.WithContext(ctx), m.ID)
		if err != nil {
			return nil, domain.PersistenceError("get participants", err)
		}
		jobs = append(jobs, toJob(m, participants))
	}
	return jobs, nil
}

func (r *implRepository) Status(ctx context.Context, id string) (domain.StatusSnapshot, error) {
	var meeting Meeting
	if err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StatusSnapshot{}, fmt.Errorf("meeting %s: %w", id, domain.ErrNotFound)
		}
		return domain.StatusSnapshot{}, domain.PersistenceError("get status", err)
	}

	snap := domain.StatusSnapshot{
		JobID:     meeting.ID,
		Status:    domain.Status(meeting.Status),
		Reason:    meeting.LastError,
		UpdatedAt: meeting.UpdatedAt,
	}
	if snap.Status == domain.StatusExported {
		snap.Document = documentRef(meeting.DocumentID, meeting.DocumentURL)
	}
	return snap, nil
}

func (r *implRepository) Artifacts(ctx context.Context, id string) (domain.Artifacts, error) {
	db := r.db.WithContext(ctx)
	var out domain.Artifacts

	var transcript Transcript
	if err := db.Limit(1).Find(&transcript, "meeting_id = ?", id).Error; err != nil {
		return out, domain.PersistenceError("get transcript", err)
	}
	if transcript.MeetingID != "" {
		out.Transcript = toTranscript(transcript)
	}

	var agenda Agenda
	if err := db.Limit(1).Find(&agenda, "meeting_id = ?", id).Error; err != nil {
		return out, domain.PersistenceError("get agenda", err)
	}
	if agenda.MeetingID != "" {
		out.Agenda = &domain.Agenda{JobID: agenda.MeetingID, Text: agenda.Text}
	}

	var protocol Protocol
	if err := db.Limit(1).Find(&protocol, "meeting_id = ?", id).Error; err != nil {
		return out, domain.PersistenceError("get protocol", err)
	}
	if protocol.MeetingID != "" {
		out.Protocol = toProtocol(protocol)
	}
	return out, nil
}
