package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/llm"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"docdot_backend/pkg/tracing"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Pipeline steps, in order, with the progress reached when each one finishes.
const (
	StepQueued     = "queued"
	StepDownload   = "download"
	StepProbe      = "probe"
	StepNormalize  = "normalize"
	StepTranscribe = "transcribe"
	StepNotes      = "notes"
	StepCompleted  = "completed"
)

var stepProgress = map[string]int{
	StepQueued:     0,
	StepDownload:   15,
	StepProbe:      25,
	StepNormalize:  40,
	StepTranscribe: 70,
	StepNotes:      95,
	StepCompleted:  100,
}

const transcribePrompt = "Transcribe this lecture recording verbatim. " +
	"Return only the transcript text, split into paragraphs where the speaker changes topic."

const notesPrompt = "You are preparing study material for medical students from a lecture transcript. " +
	"Write structured markdown notes with headings, a short summary and the key points a student must remember."

var lectureNotesSchema = &llm.Schema{
	Name:        "lecture_notes",
	Description: "Study notes for a lecture transcript",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"notes", "summary", "keyPoints"},
		"properties": map[string]any{
			"notes":     map[string]any{"type": "string"},
			"summary":   map[string]any{"type": "string"},
			"keyPoints": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
}

type LectureStore interface {
	Create(ctx context.Context, l *model.Lecture) error
	Get(ctx context.Context, userID, id string) (*model.Lecture, error)
	List(ctx context.Context, userID string, limit int) ([]model.Lecture, error)
	ListByStatus(ctx context.Context, statuses ...model.LectureStatus) ([]model.Lecture, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	AppendLog(ctx context.Context, log *model.LectureProcessingLog) error
	Logs(ctx context.Context, lectureID string) ([]model.LectureProcessingLog, error)
}

// AudioProcessor inspects and transcodes recordings.
type AudioProcessor interface {
	Probe(path string) (*util.AudioInfo, error)
	Normalize(src, dst string) error
}

type ffmpegAudio struct{}

func (ffmpegAudio) Probe(path string) (*util.AudioInfo, error) { return util.ProbeAudio(path) }
func (ffmpegAudio) Normalize(src, dst string) error          { return util.NormalizeAudio(src, dst) }

// LectureService stores uploaded recordings and turns them into transcripts and
// notes on a pool of background workers.
type LectureService struct {
	Store    LectureStore
	Storage  StorageProvider
	Provider llm.Provider
	Audio    AudioProcessor
	Events   EventPublisher
	cfg      config.LectureConfig
	now      func() time.Time

	queue chan string
	wg    sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]bool
}

func NewLectureService(store LectureStore, storage StorageProvider, provider llm.Provider, cfg config.LectureConfig) *LectureService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &LectureService{
		Store:    store,
		Storage:  storage,
		Provider: provider,
		Audio:    ffmpegAudio{},
		cfg:      cfg,
		now:      time.Now,
		queue:    make(chan string, cfg.QueueSize),
		inflight: make(map[string]bool),
	}
}

type LectureUploadRequest struct {
	Title  string `form:"title"`
	Module string `form:"module"`
	Topic  string `form:"topic"`
}

// Upload validates the recording, stores it and queues it for processing. A full
// queue does not fail the upload; the lecture stays uploaded and is picked up by
// the next requeue.
func (s *LectureService) Upload(ctx context.Context, userID string, req LectureUploadRequest, file io.ReadSeeker, filename string, size int64) (*model.Lecture, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.ErrInvalidLecture
	}
	if !util.IsAudioFile(filename) {
		return nil, util.ErrInvalidAudio
	}
	if s.cfg.MaxUploadMB > 0 && size > s.cfg.MaxUploadMB<<20 {
		return nil, fmt.Errorf("%w: limit is %d MB", util.ErrFileTooLarge, s.cfg.MaxUploadMB)
	}

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeAudio, util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidAudio, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	lecture := &model.Lecture{
		UserID:   userID,
		Title:    title,
		Module:   strings.TrimSpace(req.Module),
		Topic:    strings.TrimSpace(req.Topic),
		MimeType: mimeType,
		Status:   model.LectureUploaded,
	}
	lecture.ID = model.GenerateUUID()
	lecture.AudioKey = fmt.Sprintf("lectures/%s/%s%s", userID, lecture.ID, strings.ToLower(filepath.Ext(filename)))

	url, err := s.Storage.Upload(ctx, lecture.AudioKey, file, size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("store recording: %w", err)
	}
	lecture.AudioURL = url

	if err := s.Store.Create(ctx, lecture); err != nil {
		return nil, err
	}
	s.appendLog(ctx, lecture.ID, StepQueued, "ok", "")

	if err := s.Enqueue(lecture.ID); err != nil {
		logger.Log.Warn("Lecture not queued", zap.String("lecture_id", lecture.ID), zap.Error(err))
	}
	return lecture, nil
}

// Enqueue schedules a lecture for processing without blocking.
func (s *LectureService) Enqueue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[id] {
		return util.ErrLectureBusy
	}
	select {
	case s.queue <- id:
		s.inflight[id] = true
		return nil
	default:
		return util.ErrQueueFull
	}
}

func (s *LectureService) done(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks until
// they have.
func (s *LectureService) Start(ctx context.Context) {
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go func(worker int) {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-s.queue:
					s.Process(ctx, id)
					s.done(id)
				}
			}
		}(i)
	}
	logger.Log.Info("Lecture workers started", zap.Int("workers", s.cfg.Workers), zap.Int("queue_size", s.cfg.QueueSize))
}

func (s *LectureService) Wait() {
	s.wg.Wait()
}

// Requeue queues lectures left unfinished by a restart or a full queue. It stops
// at the first full-queue error and returns how many were queued.
func (s *LectureService) Requeue(ctx context.Context) (int, error) {
	pending, err := s.Store.ListByStatus(ctx, model.LectureUploaded, model.LectureProcessing)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range pending {
		err := s.Enqueue(l.ID)
		if errors.Is(err, util.ErrQueueFull) {
			break
		}
		if err == nil {
			n++
		}
	}
	return n, nil
}

// Retry queues a failed lecture again. The row is reset before it is queued so a
// worker's progress is never overwritten. A lecture that does not fit in the
// queue stays uploaded and is picked up by Requeue.
func (s *LectureService) Retry(ctx context.Context, userID, id string) (*model.Lecture, error) {
	l, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if l.Status != model.LectureFailed {
		return nil, util.ErrLectureBusy
	}
	fields := map[string]interface{}{"status": string(model.LectureUploaded), "progress": 0, "error_message": ""}
	if err := s.Store.Update(ctx, l.ID, fields); err != nil {
		return nil, err
	}
	l.Status, l.Progress, l.ErrorMessage = model.LectureUploaded, 0, ""

	if err := s.Enqueue(l.ID); err != nil {
		logger.Log.Warn("Lecture not queued", zap.String("lecture_id", l.ID), zap.Error(err))
	}
	return l, nil
}

// Process runs the whole pipeline for one lecture. Cancellation leaves the
// lecture in processing so that it is requeued on the next start.
func (s *LectureService) Process(ctx context.Context, id string) {
	ctx, span := tracing.StartSpan(ctx, "lecture.process", attribute.String("lecture.id", id))
	defer span.End()
	start := s.now()

	l, err := s.Store.Get(ctx, "", id)
	if err != nil {
		logger.Log.Error("Lecture vanished before processing", zap.String("lecture_id", id), zap.Error(err))
		return
	}
	if l.Status == model.LectureCompleted {
		return
	}

	step, err := s.run(ctx, l)
	if err != nil {
		if ctx.Err() != nil {
			logger.Log.Info("Lecture processing interrupted", zap.String("lecture_id", id), zap.String("step", step))
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, step)
		s.fail(ctx, l, step, err)
		return
	}

	monitoring.RecordLectureJob(string(model.LectureCompleted))
	logger.Log.Info("Lecture processed",
		zap.String("lecture_id", id),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
}

// run returns the step that failed along with the error.
func (s *LectureService) run(ctx context.Context, l *model.Lecture) (string, error) {
	if err := s.Store.Update(ctx, l.ID, map[string]interface{}{"status": string(model.LectureProcessing), "progress": 0, "error_message": ""}); err != nil {
		return StepQueued, err
	}

	workDir := filepath.Join(s.cfg.WorkDir, "lecture-"+l.ID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return StepDownload, err
	}
	defer os.RemoveAll(workDir)

	src := filepath.Join(workDir, "source"+filepath.Ext(l.AudioKey))
	if err := s.Storage.Download(ctx, l.AudioKey, src); err != nil {
		return StepDownload, fmt.Errorf("download recording: %w", err)
	}
	if err := s.advance(ctx, l, StepDownload, nil); err != nil {
		return StepDownload, err
	}

	info, err := s.Audio.Probe(src)
	if err != nil {
		return StepProbe, err
	}
	if err := s.advance(ctx, l, StepProbe, map[string]interface{}{"duration": info.Duration}); err != nil {
		return StepProbe, err
	}

	audioPath, mimeType := src, l.MimeType
	if s.cfg.NormalizeAudio {
		audioPath, mimeType = filepath.Join(workDir, "normalized.mp3"), "audio/mpeg"
		if err := s.Audio.Normalize(src, audioPath); err != nil {
			return StepNormalize, fmt.Errorf("normalize audio: %w", err)
		}
		if err := s.advance(ctx, l, StepNormalize, nil); err != nil {
			return StepNormalize, err
		}
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return StepTranscribe, err
	}
	transcript, err := s.transcribe(ctx, audio, mimeType)
	if err != nil {
		return StepTranscribe, err
	}
	if err := s.advance(ctx, l, StepTranscribe, map[string]interface{}{"transcript": transcript}); err != nil {
		return StepTranscribe, err
	}

	notes := s.notes(ctx, l, transcript)
	if notes.KeyPoints == nil {
		notes.KeyPoints = []string{}
	}
	keyPoints, _ := json.Marshal(notes.KeyPoints)
	if err := s.advance(ctx, l, StepNotes, map[string]interface{}{
		"notes":      notes.Notes,
		"summary":    notes.Summary,
		"key_points": string(keyPoints),
	}); err != nil {
		return StepNotes, err
	}

	now := s.now()
	if err := s.advance(ctx, l, StepCompleted, map[string]interface{}{
		"status":       string(model.LectureCompleted),
		"processed_at": &now,
	}); err != nil {
		return StepCompleted, err
	}
	return StepCompleted, nil
}

func (s *LectureService) transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	resp, err := s.Provider.Generate(llm.WithPurpose(ctx, "lecture_transcription"), llm.Request{
		Messages: []llm.Message{{
			Role:        llm.RoleUser,
			Content:     transcribePrompt,
			Attachments: []llm.Attachment{{MIMEType: mimeType, Data: audio}},
		}},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("transcription returned no text")
	}
	return text, nil
}

type lectureNotes struct {
	Notes     string   `json:"notes"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// notes is best effort: a reply that is not valid JSON is kept as plain notes,
// and a provider failure leaves the transcript as the only output.
func (s *LectureService) notes(ctx context.Context, l *model.Lecture, transcript string) lectureNotes {
	var out lectureNotes
	prompt := fmt.Sprintf("Lecture: %s\nModule: %s\nTopic: %s\n\nTranscript:\n%s", l.Title, l.Module, l.Topic, transcript)
	_, err := llm.GenerateJSON(llm.WithPurpose(ctx, "lecture_notes"), s.Provider, llm.Request{
		System:   notesPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:   lectureNotesSchema,
	}, &out)
	if err == nil {
		return out
	}

	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		return lectureNotes{Notes: strings.TrimSpace(invalid.Text)}
	}
	logger.Log.Warn("Lecture notes generation failed", zap.String("lecture_id", l.ID), zap.Error(err))
	return lectureNotes{}
}

func (s *LectureService) advance(ctx context.Context, l *model.Lecture, step string, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	progress := stepProgress[step]
	fields["progress"] = progress
	if err := s.Store.Update(ctx, l.ID, fields); err != nil {
		return err
	}
	s.appendLog(ctx, l.ID, step, "ok", "")

	status := model.LectureProcessing
	if step == StepCompleted {
		status = model.LectureCompleted
	}
	s.publish(l, status, step, progress, "")
	return nil
}

func (s *LectureService) fail(ctx context.Context, l *model.Lecture, step string, cause error) {
	msg := cause.Error()
	logger.Log.Error("Lecture processing failed",
		zap.String("lecture_id", l.ID),
		zap.String("step", step),
		zap.Error(cause),
	)
	if err := s.Store.Update(ctx, l.ID, map[string]interface{}{"status": string(model.LectureFailed), "error_message": msg}); err != nil {
		logger.Log.Error("Failed to mark lecture failed", zap.String("lecture_id", l.ID), zap.Error(err))
	}
	s.appendLog(ctx, l.ID, step, "failed", msg)
	monitoring.RecordLectureJob(string(model.LectureFailed))
	s.publish(l, model.LectureFailed, step, stepProgress[step], msg)
}

func (s *LectureService) appendLog(ctx context.Context, id, step, status, msg string) {
	entry := &model.LectureProcessingLog{
		LectureID: id,
		Step:      step,
		Status:    status,
		Message:   msg,
		Progress:  stepProgress[step],
		CreatedAt: s.now(),
	}
	if err := s.Store.AppendLog(ctx, entry); err != nil {
		logger.Log.Warn("Failed to append lecture log", zap.String("lecture_id", id), zap.Error(err))
	}
}

// LectureProgress is what the client polls while a lecture is processed.
type LectureProgress struct {
	ID           string                       `json:"id"`
	Status       model.LectureStatus          `json:"status"`
	Progress     int                          `json:"progress"`
	Step         string                       `json:"step,omitempty"`
	ErrorMessage string                       `json:"errorMessage,omitempty"`
	Logs         []model.LectureProcessingLog `json:"logs"`
}

func (s *LectureService) publish(l *model.Lecture, status model.LectureStatus, step string, progress int, msg string) {
	if s.Events == nil {
		return
	}
	s.Events.PublishUser(l.UserID, Event{Type: EventLectureProgress, Data: LectureProgress{
		ID:           l.ID,
		Status:       status,
		Progress:     progress,
		Step:         step,
		ErrorMessage: msg,
		Logs:         []model.LectureProcessingLog{},
	}})
}

func (s *LectureService) Get(ctx context.Context, userID, id string) (*model.Lecture, error) {
	return s.Store.Get(ctx, userID, id)
}

func (s *LectureService) List(ctx context.Context, userID string, limit int) ([]model.Lecture, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Store.List(ctx, userID, limit)
}

func (s *LectureService) Progress(ctx context.Context, userID, id string) (*LectureProgress, error) {
	l, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.Store.Logs(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &LectureProgress{
		ID:           l.ID,
		Status:       l.Status,
		Progress:     l.Progress,
		ErrorMessage: l.ErrorMessage,
		Logs:         logs,
	}
	if p.Logs == nil {
		p.Logs = []model.LectureProcessingLog{}
	}
	if n := len(logs); n > 0 {
		p.Step = logs[n-1].Step
	}
	return p, nil
}
