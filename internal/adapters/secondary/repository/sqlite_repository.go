package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vibin/llm-agent/internal/core/domain"
	"github.com/vibin/llm-agent/internal/logger"
)

// SQLiteRepository implements the ChatRepositoryPort interface backed
// by a local SQLite file, so conversations survive restarts. Tool calls
// on a message are stored as a JSON column rather than their own table;
// they are only ever read back as part of the whole message.
type SQLiteRepository struct {
	db     *sql.DB
	mutex  sync.RWMutex
	logger logger.Logger
}

// NewSQLiteRepository opens (or creates) the database at the given path
func NewSQLiteRepository(dbPath string, log logger.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("Opened chat database", "path", dbPath)
	return &SQLiteRepository{
		db:     db,
		logger: log,
	}, nil
}

// createSchema creates the chat tables if they don't exist
func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_calls TEXT,
			tool_call_id TEXT,
			tool_name TEXT,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, seq);
	`)
	return err
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SaveChat saves a chat and its full transcript. Messages are replaced
// wholesale; transcripts are append-only and small, so this stays cheap
// enough.
func (r *SQLiteRepository) SaveChat(ctx context.Context, chat *domain.Chat) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chats (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
	`, chat.ID, chat.Title, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chat.ID); err != nil {
		return err
	}

	for i, msg := range chat.Messages {
		var toolCalls []byte
		if len(msg.ToolCalls) > 0 {
			toolCalls, err = json.Marshal(msg.ToolCalls)
			if err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (id, chat_id, seq, role, content, tool_calls, tool_call_id, tool_name, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, msg.ID, chat.ID, i, msg.Role, msg.Content, nullableString(string(toolCalls)), nullableString(msg.ToolCallID), nullableString(msg.ToolName), msg.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetChat retrieves a chat by ID
func (r *SQLiteRepository) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	chat := &domain.Chat{ID: id}
	err := r.db.QueryRowContext(ctx,
		`SELECT title, created_at, updated_at FROM chats WHERE id = ?`, id,
	).Scan(&chat.Title, &chat.CreatedAt, &chat.UpdatedAt)
	if err == sql.ErrNoRows {
		r.logger.Warn("Chat not found", "chat_id", id)
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}

	messages, err := r.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages

	return chat, nil
}

// ListChats returns all chats ordered by most recent activity
func (r *SQLiteRepository) ListChats(ctx context.Context) ([]*domain.Chat, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		chat := &domain.Chat{}
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, chat := range chats {
		messages, err := r.loadMessages(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		chat.Messages = messages
	}

	return chats, nil
}

// DeleteChat deletes a chat by ID
func (r *SQLiteRepository) DeleteChat(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrChatNotFound
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, id)
	return err
}

// loadMessages loads the transcript of one chat in order
func (r *SQLiteRepository) loadMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, content, tool_calls, tool_call_id, tool_name, created_at
		FROM messages WHERE chat_id = ? ORDER BY seq
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var toolCalls, toolCallID, toolName sql.NullString
		var createdAt time.Time

		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &toolCalls, &toolCallID, &toolName, &createdAt); err != nil {
			return nil, err
		}
		msg.CreatedAt = createdAt
		msg.ToolCallID = toolCallID.String
		msg.ToolName = toolName.String

		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, err
			}
		}

		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// nullableString maps an empty string to SQL NULL
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
