package chat

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type (
	// Repository provides access to the messages storage.
	Repository interface {
		CreateMessage(ctx context.Context, msg *Message) error
		// GetMessagesBetween returns the thread between two users, oldest
		// first.
		GetMessagesBetween(ctx context.Context, userID1, userID2 string) ([]Message, error)
		GetMessagesFor(ctx context.Context, userID string) ([]Message, error)
		// MarkMessagesRead marks all messages from senderID to receiverID as
		// read.
		MarkMessagesRead(ctx context.Context, senderID, receiverID string) error
	}

	Service interface {
		Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error)
		// Between returns the thread between two users, oldest first.
		Between(ctx context.Context, userID1, userID2 string) ([]Message, error)
		// ConversationsFor lists userID's threads, most recent first.
		ConversationsFor(ctx context.Context, userID string) ([]Conversation, error)
		MarkRead(ctx context.Context, senderID, receiverID string) error
	}

	service struct {
		repo    Repository
		userSvc user.Service
		log     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, userSvc user.Service, log core.Logger) Service {
	return &service{repo: repo, userSvc: userSvc, log: log}
}

func (s service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	if err := nm.Validate(); err != nil {
		return Message{}, err
	}
	if _, err := s.userSvc.GetByID(ctx, nm.ReceiverID); err != nil {
		return Message{}, errors.Wrap(err, "resolving receiver")
	}
	msg := Message{
		SenderID:        sender.ID,
		ReceiverID:      nm.ReceiverID,
		Text:            nm.Text,
		SenderName:      sender.Name,
		SenderAvatarURL: sender.AvatarURL,
		Timestamp:       nowFunc().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, &msg); err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}
	return msg, nil
}

func (s service) Between(ctx context.Context, userID1, userID2 string) ([]Message, error) {
	return s.repo.GetMessagesBetween(ctx, userID1, userID2)
}

func (s service) ConversationsFor(ctx context.Context, userID string) ([]Conversation, error) {
	msgs, err := s.repo.GetMessagesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	byPartner := make(map[string]*Conversation)
	for _, msg := range msgs {
		partnerID := msg.SenderID
		if partnerID == userID {
			partnerID = msg.ReceiverID
		}
		conv, ok := byPartner[partnerID]
		if !ok {
			conv = &Conversation{ID: ConversationID(userID, partnerID)}
			byPartner[partnerID] = conv
		}
		if msg.Timestamp.After(conv.LastMessage.Timestamp) {
			conv.LastMessage = msg
		}
		if msg.ReceiverID == userID && !msg.Read {
			conv.UnreadCount++
		}
	}

	convs := make([]Conversation, 0, len(byPartner))
	for partnerID, conv := range byPartner {
		partner, err := s.userSvc.GetByID(ctx, partnerID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				continue // partner account was deleted
			}
			return nil, err
		}
		conv.Participant = partner
		convs = append(convs, *conv)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastMessage.Timestamp.After(convs[j].LastMessage.Timestamp)
	})
	return convs, nil
}

func (s service) MarkRead(ctx context.Context, senderID, receiverID string) error {
	return s.repo.MarkMessagesRead(ctx, senderID, receiverID)
}
