package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/litedump/internal/config"
)

// Bot API upload limit for documents.
const telegramMaxFileSize = 50 * 1024 * 1024

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramStorage posts dumps, or a notice about them, to a chat. Telegram
// cannot list or delete what was sent, so retention does not apply to it.
type TelegramStorage struct {
	bot        TelegramSender
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.UploadTarget) (*TelegramStorage, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return newTelegram(bot, cfg), nil
}

func newTelegram(bot TelegramSender, cfg *config.UploadTarget) *TelegramStorage {
	return &TelegramStorage{
		bot:        bot,
		chatID:     cfg.ChatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}
}

func (t *TelegramStorage) Name() string {
	return "telegram"
}

func (t *TelegramStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	fileInfo, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	sizeMB := float64(fileInfo.Size()) / (1024 * 1024)

	if t.notifyOnly || !t.sendFile || fileInfo.Size() > telegramMaxFileSize {
		message := fmt.Sprintf(
			"✅ SQLite dump created\n\n📁 File: %s\n📊 Size: %.2f MB\n🕐 Time: %s",
			remoteName,
			sizeMB,
			fileInfo.ModTime().Format("2006-01-02 15:04:05"),
		)

		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
			return fmt.Errorf("failed to send telegram notification: %w", err)
		}

		return nil
	}

	document := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(localPath))
	document.Caption = fmt.Sprintf("📦 %s (%.2f MB)", remoteName, sizeMB)

	if _, err := t.bot.Send(document); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}

	return nil
}

func (t *TelegramStorage) List(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func (t *TelegramStorage) Delete(ctx context.Context, remoteName string) error {
	return nil
}

func (t *TelegramStorage) GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error) {
	return []string{}, nil
}
