package store

import "github.com/nguyentantai21042004/protocol-flow/internal/domain"

func toMeetingModel(job domain.Job) Meeting {
	m := Meeting{
		ID:        job.ID,
		Topic:     job.Topic,
		Date:      job.Date,
		AudioPath: job.AudioPath,
		Status:    string(job.Status),
		LastError: job.LastError,
	}
	if job.Document != nil {
		m.DocumentID = job.Document.ID
		m.DocumentURL = job.Document.URL
	}
	return m
}

func toJob(m Meeting, participants []Participant) domain.Job {
	job := domain.Job{
		ID:        m.ID,
		Topic:     m.Topic,
		Date:      m.Date,
		AudioPath: m.AudioPath,
		Status:    domain.Status(m.Status),
		LastError: m.LastError,
		Document:  documentRef(m.DocumentID, m.DocumentURL),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	job.Participants = make([]domain.Participant, 0, len(participants))
	for _, p := range participants {
		job.Participants = append(job.Participants, domain.Participant{
			ID:          p.ID,
			Name:        p.Name,
			VoiceSample: p.VoiceSample,
			Email:       p.Email,
			Tag:         p.Tag,
		})
	}
	return job
}

func documentRef(id, url string) *domain.DocumentRef {
	if id == "" && url == "" {
		return nil
	}
	return &domain.DocumentRef{ID: id, URL: url}
}

func toTranscriptModel(jobID string, t domain.Transcript) Transcript {
	m := Transcript{
		MeetingID:       jobID,
		Text:            t.Text,
		SpeakerMapping:  t.SpeakerMapping,
		UnknownSpeakers: t.UnknownSpeakers,
	}
	for _, u := range t.Utterances {
		m.Utterances = append(m.Utterances, UtteranceRecord(u))
	}
	return m
}

func toTranscript(m Transcript) *domain.Transcript {
	t := &domain.Transcript{
		JobID:           m.MeetingID,
		Text:            m.Text,
		SpeakerMapping:  m.SpeakerMapping,
		UnknownSpeakers: m.UnknownSpeakers,
	}
	for _, u := range m.Utterances {
		t.Utterances = append(t.Utterances, domain.Utterance(u))
	}
	return t
}

func toProtocolModel(jobID string, p domain.Protocol) Protocol {
	m := Protocol{
		MeetingID: jobID,
		Status:    string(p.Status),
		Text:      p.Text,
		Language:  p.Language,
		Filename:  p.Filename,
	}
	if p.Document != nil {
		m.DocumentID = p.Document.ID
		m.DocumentURL = p.Document.URL
	}
	return m
}

func toProtocol(m Protocol) *domain.Protocol {
	return &domain.Protocol{
		JobID:    m.MeetingID,
		Status:   domain.ProtocolStatus(m.Status),
		Text:     m.Text,
		Language: m.Language,
		Filename: m.Filename,
		Document: documentRef(m.DocumentID, m.DocumentURL),
	}
}
