package testutil

import (
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
)

// Logger records log entries for assertions instead of printing them.
type Logger struct {
	mu      sync.Mutex
	Entries []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, level+": "+msg)
}

func (l *Logger) Enable(bool)                          {}
func (l *Logger) Debug(msg string, _ ...interface{})   { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})    { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})    { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{})   { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{})   { l.log("FATAL", msg) }

func (l *Logger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// NewConfig returns a config suitable for tests, without touching viper or
// the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "test",
		AppName:          "DesignStudy",
		DefaultFromEmail: mail.Address{Name: "DesignStudy", Address: "noreply@designstudy.test"},
	}
	conf.Present = core.PresentConfig{
		SofficeBin:      "soffice",
		PdftoppmBin:     "pdftoppm",
		TTSBin:          "espeak-ng",
		FFmpegBin:       "ffmpeg",
		FFprobeBin:      "ffprobe",
		SlideWidth:      1280,
		SlideHeight:     720,
		Rate:            170,
		SynthTimeout:    100 * time.Millisecond,
		MaxNarrationLen: 100,
		MinAudioBytes:   16,
		MinVideoBytes:   64,
		PaddingSec:      0.5,
		FloorSec:        2.0,
		SynthWorkers:    2,
		EncodeThreads:   2,
		QueueSize:       8,
	}
	return conf
}

// FakeEmailService captures messages synchronously.
type FakeEmailService struct {
	mu       sync.Mutex
	Messages []*core.EmailMessage
}

var _ core.EmailService = (*FakeEmailService)(nil)

func (s *FakeEmailService) SendMessages(messages ...*core.EmailMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, messages...)
}

func (s *FakeEmailService) Sent() []*core.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*core.EmailMessage(nil), s.Messages...)
}
