package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"run-tracker/model"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

const (
	telemetryQueueSize = 64
	webhookTimeout     = 10 * time.Second
)

var _ model.Telemetry = (*Telemetry)(nil)

// Telemetry writes events to slog and, when a webhook URL is configured, mirrors them
// to a Discord channel as embeds. Webhook delivery happens on a background goroutine;
// entries are dropped when the queue is full.
type Telemetry struct {
	logger     *slog.Logger
	webhookURL string
	client     *http.Client

	mu     sync.Mutex
	closed bool
	queue  chan *discordgo.MessageEmbed
	wg     sync.WaitGroup
}

// NewTelemetry creates a telemetry sink. An empty webhookURL disables the Discord mirror.
func NewTelemetry(logger *slog.Logger, webhookURL string) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Telemetry{
		logger:     logger,
		webhookURL: webhookURL,
		client:     newWebhookClient(webhookTimeout),
	}
	if webhookURL != "" {
		t.queue = make(chan *discordgo.MessageEmbed, telemetryQueueSize)
		t.wg.Add(1)
		go t.deliver()
	}
	return t
}

// NewLogger builds the process logger from a level name.
func NewLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (t *Telemetry) LogEvent(message string) {
	t.log(Info, message)
}

func (t *Telemetry) LogWarn(message string) {
	t.log(Warn, message)
}

func (t *Telemetry) LogError(err error) {
	if err == nil {
		return
	}
	t.log(Error, err.Error())
}

func (t *Telemetry) log(level LogLevel, message string) {
	if t == nil {
		return
	}
	switch level {
	case Error:
		t.logger.Error(message)
	case Warn:
		t.logger.Warn(message)
	default:
		t.logger.Info(message)
	}
	t.enqueue(newLogEmbed(level, message))
}

func (t *Telemetry) enqueue(embed *discordgo.MessageEmbed) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queue == nil || t.closed {
		return
	}
	select {
	case t.queue <- embed:
	default:
		t.logger.Warn("telemetry queue full, dropping webhook entry", "title", embed.Title)
	}
}

// Close stops accepting entries and waits for queued ones to be delivered.
func (t *Telemetry) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed || t.queue == nil {
		t.closed = true
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Telemetry) deliver() {
	defer t.wg.Done()
	for embed := range t.queue {
		if err := t.sendLog(embed); err != nil {
			t.logger.Warn("failed to send log to discord", "error", err)
		}
	}
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func newLogEmbed(level LogLevel, message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     string(level) + " Log",
		Color:     getColor(level),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: "run-tracker"},
			{Name: "Message", Value: truncate(message, 1024)},
		},
	}
}

func (t *Telemetry) sendLog(embed *discordgo.MessageEmbed) error {
	payload := discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}
	return nil
}

// Embed field values are capped by Discord, counted in characters.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
