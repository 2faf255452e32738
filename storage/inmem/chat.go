package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/chat"
)

type messageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) chat.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(_ context.Context, msg *chat.Message) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = newID()
	row := *msg
	repo.db.messages = append(repo.db.messages, &row)
	return nil
}

func (repo *messageRepository) GetMessagesBetween(_ context.Context, userID1, userID2 string) ([]chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	convID := chat.ConversationID(userID1, userID2)
	var msgs []chat.Message
	// messages are stored in send order, oldest first
	for _, msg := range repo.db.messages {
		if chat.ConversationID(msg.SenderID, msg.ReceiverID) == convID {
			msgs = append(msgs, *msg)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) GetMessagesFor(_ context.Context, userID string) ([]chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var msgs []chat.Message
	for _, msg := range repo.db.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			msgs = append(msgs, *msg)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) MarkMessagesRead(_ context.Context, senderID, receiverID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, msg := range repo.db.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID {
			msg.Read = true
		}
	}
	return nil
}
