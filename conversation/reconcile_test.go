package conversation_test

import (
	"testing"
	"time"

	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/internal/mytesting"
	"github.com/habiliai/edudash/thread"
	"github.com/jcooky/go-din"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type ReconcilerTestSuite struct {
	mytesting.Suite

	manager    thread.Manager
	backend    *faultyBackend
	reconciler *conversation.Reconciler

	hello, reply, deleted *entity.Message
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.manager = din.MustGetT[thread.Manager](s.Container)
	s.backend = newFaultyBackend(s.manager)
	s.reconciler = conversation.NewReconciler(s.backend, nil)

	s.Require().NoError(s.manager.SaveProfile(s, &entity.Profile{ID: "parent-1", FirstName: "Pat", LastName: "Parent", Role: entity.RoleParent}))
	s.Require().NoError(s.manager.SaveProfile(s, &entity.Profile{ID: "teacher-1", FirstName: "Tess", LastName: "Teacher", Role: entity.RoleTeacher}))
	_, err := s.manager.CreateThread(s, &entity.Thread{
		ID:   "thread-a",
		Type: entity.ThreadTypeParentTeacher,
		Participants: []entity.ThreadParticipant{
			{UserID: "parent-1", Role: entity.RoleParent},
			{UserID: "teacher-1", Role: entity.RoleTeacher},
		},
	})
	s.Require().NoError(err)

	base := time.Now().Add(-time.Hour)
	s.hello, err = s.manager.InsertMessage(s, &entity.Message{ThreadID: "thread-a", SenderID: "teacher-1", Content: "Hello", CreatedAt: base})
	s.Require().NoError(err)
	s.reply, err = s.manager.InsertMessage(s, &entity.Message{
		ThreadID:  "thread-a",
		SenderID:  "parent-1",
		Content:   "Hi!",
		CreatedAt: base.Add(time.Minute),
		ReplyToID: lo.ToPtr(s.hello.ID),
	})
	s.Require().NoError(err)
	s.deleted, err = s.manager.InsertMessage(s, &entity.Message{ThreadID: "thread-a", SenderID: "teacher-1", Content: "oops", CreatedAt: base.Add(2 * time.Minute)})
	s.Require().NoError(err)
	_, err = s.manager.SoftDeleteMessage(s, s.deleted.ID, "teacher-1")
	s.Require().NoError(err)

	for _, r := range []struct{ user, emoji string }{
		{"parent-1", "👍"},
		{"teacher-1", "👍"},
		{"ghost", "👍"},
		{"teacher-1", "❤️"},
	} {
		added, err := s.manager.ToggleReaction(s, s.hello.ID, r.user, r.emoji)
		s.Require().NoError(err)
		s.Require().True(added)
	}
}

func (s *ReconcilerTestSuite) TestReconcileEnrichesMessages() {
	views, err := s.reconciler.Reconcile(s, "thread-a", "parent-1")
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	hello, reply := views[0], views[1]
	s.Equal(s.hello.ID, hello.ID)
	s.Equal("Tess Teacher", hello.SenderName)
	s.Equal(conversation.StatusSent, hello.Status)
	s.Nil(hello.Reply)

	s.Require().Len(hello.Reactions, 2)
	thumbs := hello.Reactions[0]
	s.Equal("👍", thumbs.Emoji)
	s.Equal(3, thumbs.Count)
	s.ElementsMatch([]string{"parent-1", "teacher-1", "ghost"}, thumbs.UserIDs)
	s.ElementsMatch([]string{"Pat Parent", "Tess Teacher"}, thumbs.UserNames)
	s.True(thumbs.ReactedByMe)
	heart := hello.Reactions[1]
	s.Equal("❤️", heart.Emoji)
	s.Equal(1, heart.Count)
	s.False(heart.ReactedByMe)

	s.Equal(s.reply.ID, reply.ID)
	s.Equal("Pat Parent", reply.SenderName)
	s.Require().NotNil(reply.Reply)
	s.Equal(s.hello.ID, reply.Reply.MessageID)
	s.Equal("Tess Teacher", reply.Reply.SenderName)
	s.Equal("Hello", reply.Reply.Content)
	s.Empty(reply.Reactions)
}

func (s *ReconcilerTestSuite) TestReconcileNeverShowsDeletedMessages() {
	views, err := s.reconciler.Reconcile(s, "thread-a", "teacher-1")
	s.Require().NoError(err)
	for _, v := range views {
		s.NotEqual(s.deleted.ID, v.ID)
		s.Nil(v.DeletedAt)
	}
}

func (s *ReconcilerTestSuite) TestReconcileEnrichmentIsBestEffort() {
	s.backend.failProfiles.Store(true)
	s.backend.failReactions.Store(true)
	s.backend.failReplies.Store(true)

	views, err := s.reconciler.Reconcile(s, "thread-a", "parent-1")
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	for _, v := range views {
		s.Empty(v.SenderName)
		s.Nil(v.Reactions)
		s.Nil(v.Reply)
	}
	s.Equal("Hi!", views[1].Content)
}

func (s *ReconcilerTestSuite) TestReconcileFailsWithoutMessages() {
	s.backend.failMessages.Store(true)

	_, err := s.reconciler.Reconcile(s, "thread-a", "parent-1")
	s.Require().ErrorIs(err, errUnavailable)
}

func (s *ReconcilerTestSuite) TestReconcileEmptyThread() {
	views, err := s.reconciler.Reconcile(s, "thread-unknown", "parent-1")
	s.Require().NoError(err)
	s.Empty(views)
}

func TestReconciler(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}
