package pipeline

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/protocol-flow/internal/agent"
	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
	"github.com/nguyentantai21042004/protocol-flow/internal/export"
	"github.com/nguyentantai21042004/protocol-flow/internal/transcription"
)

func (o *implOrchestrator) transcribe(ctx context.Context, r *run) (domain.Artifacts, error) {
	t, err := o.transcriber.Transcribe(ctx, transcription.Request{
		JobID:        r.job.ID,
		AudioPath:    r.job.AudioPath,
		Participants: r.job.Participants,
	})
	if err != nil {
		return domain.Artifacts{}, err
	}
	t.JobID = r.job.ID
	r.transcript = t
	return domain.Artifacts{Transcript: &r.transcript}, nil
}

func (o *implOrchestrator) mapSpeakers(ctx context.Context, r *run) (domain.Artifacts, error) {
	var (
		mapping map[string]string
		unknown []string
	)

	if UsesVoiceSamples(r.job.Participants) {
		mapping, unknown = MapByVoiceSamples(r.job.Participants)
		o.logger.Debug(ctx, "Speakers mapped from voice samples, %d unknown", len(unknown))
	} else {
		answer, err := o.complete(ctx, agent.PromptSpeakerMapping, agent.Vars{
			"participants": strings.Join(r.job.ParticipantNames(), ", "),
			"transcript":   r.transcript.Text,
			"example_json": exampleMappingJSON(r.job.Participants),
		}, o.budgets.SpeakerMapping, cache.Key(cache.StageSpeakerMapping, r.job.ID))
		if err != nil {
			return domain.Artifacts{}, err
		}
		mapping, err = ParseSpeakerMapping(answer)
		if err != nil {
			return domain.Artifacts{}, domain.AgentError("parse speaker mapping", err)
		}
		unknown = UnmappedParticipants(r.job.Participants, mapping)
	}

	r.transcript.Text = ApplyMapping(r.transcript.Text, mapping)
	r.transcript.SpeakerMapping = mapping
	r.transcript.UnknownSpeakers = unknown
	return domain.Artifacts{Transcript: &r.transcript}, nil
}

func (o *implOrchestrator) inferAgenda(ctx context.Context, r *run) (domain.Artifacts, error) {
	text, err := o.complete(ctx, agent.PromptInferAgenda, agent.Vars{
		"transcript": r.transcript.Text,
		"topic":      r.job.Topic,
	}, o.budgets.Agenda, cache.Key(cache.StageAgenda, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}
	r.agenda = domain.Agenda{JobID: r.job.ID, Text: text}
	return domain.Artifacts{Agenda: &r.agenda}, nil
}

func (o *implOrchestrator) draftProtocol(ctx context.Context, r *run) (domain.Artifacts, error) {
	text, err := o.complete(ctx, agent.PromptProtocol, agent.Vars{
		"transcript":       r.transcript.Text,
		"agenda":           r.agenda.Text,
		"date":             r.job.Date.Format(dateLayout),
		"unknown_speakers": strings.Join(r.transcript.UnknownSpeakers, ", "),
	}, o.budgets.Protocol, cache.Key(cache.StageProtocol, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}
	r.protocol = domain.Protocol{
		JobID:  r.job.ID,
		Status: domain.ProtocolRaw,
		Text:   text,
	}
	return domain.Artifacts{Protocol: &r.protocol}, nil
}

// deriveFilename keeps the title on the in-memory protocol; it is stored
// with the next protocol commit.
func (o *implOrchestrator) deriveFilename(ctx context.Context, r *run) (domain.Artifacts, error) {
	answer, err := o.complete(ctx, agent.PromptFilename, agent.Vars{
		"meeting_protocol": r.protocol.Text,
		"date":             r.job.Date.Format(dateLayout),
	}, o.budgets.Filename, cache.Key(cache.StageFilename, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}
	r.protocol.Filename = sanitizeFilename(answer, r.job.Date, r.job.Topic)
	return domain.Artifacts{}, nil
}

// ensureLanguage detects the transcript language from its trailing excerpt
// and rewrites the draft only when it is written in another language.
func (o *implOrchestrator) ensureLanguage(ctx context.Context, r *run) (domain.Artifacts, error) {
	target, err := o.detectLanguage(ctx, r.transcript.Text, cache.Key(cache.StageInferLanguage, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}
	current, err := o.detectLanguage(ctx, r.protocol.Text, cache.Key(cache.StageDraftLanguage, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}

	if sameLanguage(target, current) {
		o.logger.Debug(ctx, "Protocol already in %s", target)
	} else {
		text, err := o.complete(ctx, agent.PromptEnsureLanguage, agent.Vars{
			"meeting_protocol": r.protocol.Text,
			"language":         target,
		}, o.budgets.EnsureLanguage, cache.Key(cache.StageEnsureLanguage, r.job.ID))
		if err != nil {
			return domain.Artifacts{}, err
		}
		o.logger.Info(ctx, "Protocol rewritten from %s to %s", current, target)
		r.protocol.Text = text
	}

	r.protocol.Language = target
	r.protocol.Status = domain.ProtocolLanguageEnsured
	return domain.Artifacts{Protocol: &r.protocol}, nil
}

func (o *implOrchestrator) detectLanguage(ctx context.Context, text, cacheKey string) (string, error) {
	answer, err := o.complete(ctx, agent.PromptInferLanguage, agent.Vars{
		"transcript": trailingExcerpt(text, languageExcerptRunes),
	}, o.budgets.InferLanguage, cacheKey)
	if err != nil {
		return "", err
	}
	lang := normalizeLanguage(answer)
	if lang == "" {
		return "", domain.AgentError("detect language", domain.ErrEmptyResponse)
	}
	return lang, nil
}

func (o *implOrchestrator) ensureMarkdown(ctx context.Context, r *run) (domain.Artifacts, error) {
	text, err := o.complete(ctx, agent.PromptEnsureMarkdown, agent.Vars{
		"meeting_protocol": r.protocol.Text,
	}, o.budgets.EnsureMarkdown, cache.Key(cache.StageEnsureMarkdown, r.job.ID))
	if err != nil {
		return domain.Artifacts{}, err
	}
	r.protocol.Text = stripCodeFence(text)
	r.protocol.Status = domain.ProtocolMarkdownEnsured
	return domain.Artifacts{Protocol: &r.protocol}, nil
}

func (o *implOrchestrator) export(ctx context.Context, r *run) (domain.Artifacts, error) {
	ref, err := o.exporter.Export(ctx, export.Request{
		JobID:        r.job.ID,
		Filename:     r.protocol.Filename,
		Markdown:     r.protocol.Text,
		Participants: r.job.ParticipantNames(),
	})
	if err != nil {
		return domain.Artifacts{}, err
	}
	r.protocol.Document = &ref
	r.protocol.Status = domain.ProtocolExported
	return domain.Artifacts{Protocol: &r.protocol}, nil
}

// complete renders a catalogue prompt and sends it to the agent.
func (o *implOrchestrator) complete(ctx context.Context, name agent.PromptName, vars agent.Vars, maxTokens int, cacheKey string) (string, error) {
	prompt, err := o.prompts.Render(name, vars)
	if err != nil {
		return "", domain.AgentError("render "+string(name), err)
	}
	return o.agent.Complete(ctx, agent.Call{
		System:    prompt.System,
		User:      prompt.User,
		MaxTokens: maxTokens,
		CacheKey:  cacheKey,
	})
}
