package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

type mailSvcStub struct{}

func (mailSvcStub) SendMessages(...*core.EmailMessage) {}

func setup(t *testing.T) (chat.Service, user.Repository) {
	db := testutil.OpenDB(t)
	conf := &core.Config{AppName: "Darasa", TestMode: true}
	logger := testutil.NewLogger()
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(conf, usrRepo, mailSvcStub{}, logger)
	return chat.NewService(inmemdb.NewMessageRepository(db), usrSvc, logger), usrRepo
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, chat.ConversationID("a", "b"), chat.ConversationID("b", "a"))
	assert.Equal(t, "a_b", chat.ConversationID("b", "a"))
}

func Test_service_SendAndBetween(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	tom := testutil.CreateUser(t, usrRepo, "Tom Teacher", "tom@darasa.io", user.RoleTeacher, nil, nil)
	paul := testutil.CreateUser(t, usrRepo, "Paul Parent", "paul@darasa.io", user.RoleParent, nil, nil)

	// unknown receiver is rejected
	_, err := svc.Send(ctx, tom, chat.NewMessage{ReceiverID: "nobody", Text: "hi"})
	assert.Error(t, err)

	msg, err := svc.Send(ctx, tom, chat.NewMessage{ReceiverID: paul.ID, Text: "Sam did great today"})
	assert.NoError(t, err)
	assert.Equal(t, tom.Name, msg.SenderName)
	assert.False(t, msg.Read)

	_, err = svc.Send(ctx, paul, chat.NewMessage{ReceiverID: tom.ID, Text: "Thanks!"})
	assert.NoError(t, err)

	// the thread reads the same from both sides, oldest first
	msgs, err := svc.Between(ctx, tom.ID, paul.ID)
	assert.NoError(t, err)
	if assert.Len(t, msgs, 2) {
		assert.Equal(t, "Sam did great today", msgs[0].Text)
		assert.Equal(t, "Thanks!", msgs[1].Text)
	}
	msgsRev, err := svc.Between(ctx, paul.ID, tom.ID)
	assert.NoError(t, err)
	assert.Equal(t, msgs, msgsRev)
}

func Test_service_ConversationsFor(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	tom := testutil.CreateUser(t, usrRepo, "Tom Teacher", "tom@darasa.io", user.RoleTeacher, nil, nil)
	paul := testutil.CreateUser(t, usrRepo, "Paul Parent", "paul@darasa.io", user.RoleParent, nil, nil)
	petra := testutil.CreateUser(t, usrRepo, "Petra Parent", "petra@darasa.io", user.RoleParent, nil, nil)

	_, err := svc.Send(ctx, paul, chat.NewMessage{ReceiverID: tom.ID, Text: "About Sam"})
	assert.NoError(t, err)
	_, err = svc.Send(ctx, paul, chat.NewMessage{ReceiverID: tom.ID, Text: "Are you there?"})
	assert.NoError(t, err)
	_, err = svc.Send(ctx, petra, chat.NewMessage{ReceiverID: tom.ID, Text: "Hello"})
	assert.NoError(t, err)

	convs, err := svc.ConversationsFor(ctx, tom.ID)
	assert.NoError(t, err)
	if assert.Len(t, convs, 2) {
		for _, conv := range convs {
			switch conv.Participant.ID {
			case paul.ID:
				assert.Equal(t, 2, conv.UnreadCount)
				assert.Equal(t, "Are you there?", conv.LastMessage.Text)
			case petra.ID:
				assert.Equal(t, 1, conv.UnreadCount)
			default:
				t.Errorf("unexpected participant %q", conv.Participant.ID)
			}
		}
	}

	// reading paul's messages clears the counter
	assert.NoError(t, svc.MarkRead(ctx, paul.ID, tom.ID))
	convs, err = svc.ConversationsFor(ctx, tom.ID)
	assert.NoError(t, err)
	for _, conv := range convs {
		if conv.Participant.ID == paul.ID {
			assert.Equal(t, 0, conv.UnreadCount)
		}
	}
}
