package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/websocket"
)

// commentFixture has alice and bob in C7 with one publication by alice, and
// carol outside of it
type commentFixture struct {
	*fixture
	alice, bob, carol *models.Account
	c7, c8            *models.Community
	publication       *dto.PublicationResponse
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	f := newFixture()
	cf := &commentFixture{fixture: f}
	cf.alice = f.account(t, "alice")
	cf.bob = f.account(t, "bob")
	cf.carol = f.account(t, "carol")
	cf.c7 = f.community(t, "C7", cf.alice, cf.bob)
	cf.c8 = f.community(t, "C8", cf.alice, cf.carol)

	pub, err := f.publications().CreatePublication(context.Background(), cf.alice.ID, &dto.CreatePublicationRequest{
		Text:        "hola",
		CommunityID: cf.c7.ID.String(),
	}, nil)
	require.NoError(t, err)
	cf.publication = pub
	f.publisher.events = nil
	return cf
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)

	resp, err := cf.comments().CreateComment(ctx, cf.bob.ID, &dto.CreateCommentRequest{
		PublicationID: cf.publication.ID.String(),
		CommunityID:   cf.c7.ID.String(),
		Text:          "  genial  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "genial", resp.Text)
	assert.Equal(t, cf.publication.ID, resp.PublicationID)
	assert.Equal(t, cf.c7.ID, resp.CommunityID)
	require.NotNil(t, resp.Author)
	assert.Equal(t, "bob", resp.Author.Handle)

	events := cf.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "newComentario_"+cf.c7.ID.String(), events[0].channel.Name())
	created, ok := events[0].payload.(dto.CommentCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, resp.ID, created.ID)
	assert.Equal(t, cf.publication.ID, created.PublicationRef)
}

func TestCreateComment_AuthorLookupFailureStillPublishes(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	cf.store.FailOn("accounts.GetByIDs", errBoom)

	resp, err := cf.comments().CreateComment(ctx, cf.bob.ID, &dto.CreateCommentRequest{
		PublicationID: cf.publication.ID.String(),
		CommunityID:   cf.c7.ID.String(),
		Text:          "genial",
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Author)
	assert.Equal(t, 1, cf.store.CommentCount())

	events := cf.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, "newComentario_"+cf.c7.ID.String(), events[0].channel.Name())
}

func TestCreateComment_CheckOrder(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	pubID := cf.publication.ID.String()

	tests := []struct {
		name   string
		caller uuid.UUID
		req    dto.CreateCommentRequest
		target error
		field  string
	}{
		{
			name:   "missing text",
			caller: cf.bob.ID,
			req:    dto.CreateCommentRequest{PublicationID: pubID, CommunityID: cf.c7.ID.String(), Text: "  "},
			target: apperrors.ErrBadRequest,
			field:  "contenido",
		},
		{
			name:   "missing fields win over membership",
			caller: cf.carol.ID,
			req:    dto.CreateCommentRequest{CommunityID: cf.c7.ID.String(), Text: "x"},
			target: apperrors.ErrBadRequest,
			field:  "publicacion",
		},
		{
			name:   "malformed publication",
			caller: cf.bob.ID,
			req:    dto.CreateCommentRequest{PublicationID: "nope", CommunityID: cf.c7.ID.String(), Text: "x"},
			target: apperrors.ErrBadRequest,
			field:  "publicacion",
		},
		{
			name:   "unknown publication",
			caller: cf.bob.ID,
			req:    dto.CreateCommentRequest{PublicationID: uuid.NewString(), CommunityID: cf.c7.ID.String(), Text: "x"},
			target: apperrors.ErrResourceNotFound,
		},
		{
			name:   "cross community",
			caller: cf.alice.ID,
			req:    dto.CreateCommentRequest{PublicationID: pubID, CommunityID: cf.c8.ID.String(), Text: "x"},
			target: apperrors.ErrBadRequest,
			field:  "comunidad",
		},
		{
			name:   "cross community wins over membership",
			caller: cf.carol.ID,
			req:    dto.CreateCommentRequest{PublicationID: pubID, CommunityID: cf.c8.ID.String(), Text: "x"},
			target: apperrors.ErrBadRequest,
			field:  "comunidad",
		},
		{
			name:   "non member",
			caller: cf.carol.ID,
			req:    dto.CreateCommentRequest{PublicationID: pubID, CommunityID: cf.c7.ID.String(), Text: "x"},
			target: apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cf.comments().CreateComment(ctx, tt.caller, &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.field != "" {
				assert.Equal(t, tt.field, apperrors.FieldOf(err))
			}
		})
	}

	assert.Zero(t, cf.store.CommentCount())
	assert.Empty(t, cf.publisher.all())
}

func TestCreateComment_MembershipIsReadFresh(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	req := &dto.CreateCommentRequest{
		PublicationID: cf.publication.ID.String(),
		CommunityID:   cf.c7.ID.String(),
		Text:          "x",
	}

	require.NoError(t, cf.store.Communities().RemoveMember(ctx, cf.c7.ID, cf.bob.ID))
	_, err := cf.comments().CreateComment(ctx, cf.bob.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, cf.store.Communities().AddMember(ctx, cf.c7.ID, cf.bob.ID))
	_, err = cf.comments().CreateComment(ctx, cf.bob.ID, req)
	assert.NoError(t, err)
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	svc := cf.comments()

	created, err := svc.CreateComment(ctx, cf.bob.ID, &dto.CreateCommentRequest{
		PublicationID: cf.publication.ID.String(),
		CommunityID:   cf.c7.ID.String(),
		Text:          "primero",
	})
	require.NoError(t, err)
	cf.publisher.events = nil

	_, err = svc.UpdateComment(ctx, cf.alice.ID, created.ID.String(), &dto.UpdateCommentRequest{Text: "hack"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, cf.publisher.all())

	_, err = svc.UpdateComment(ctx, cf.bob.ID, created.ID.String(), &dto.UpdateCommentRequest{Text: " "})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.UpdateComment(ctx, cf.bob.ID, uuid.NewString(), &dto.UpdateCommentRequest{Text: "x"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	updated, err := svc.UpdateComment(ctx, cf.bob.ID, created.ID.String(), &dto.UpdateCommentRequest{Text: "editado"})
	require.NoError(t, err)
	assert.Equal(t, "editado", updated.Text)
	assert.Equal(t, created.Author, updated.Author)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	events := cf.publisher.all()
	require.Len(t, events, 1)
	assert.Equal(t, websocket.KindUpdateComment, events[0].channel.Kind)
	assert.Equal(t, cf.c7.ID, events[0].channel.CommunityID)
	assert.Equal(t, dto.CommentUpdatedEvent{
		ID:            created.ID,
		Text:          "editado",
		Author:        created.Author,
		PublicationID: cf.publication.ID,
		CommunityID:   cf.c7.ID,
	}, events[0].payload)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	svc := cf.comments()

	created, err := svc.CreateComment(ctx, cf.bob.ID, &dto.CreateCommentRequest{
		PublicationID: cf.publication.ID.String(),
		CommunityID:   cf.c7.ID.String(),
		Text:          "borrame",
	})
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, cf.alice.ID, created.ID.String())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, 1, cf.store.CommentCount())

	require.NoError(t, svc.DeleteComment(ctx, cf.bob.ID, created.ID.String()))
	assert.Zero(t, cf.store.CommentCount())

	events := cf.publisher.all()
	last := events[len(events)-1]
	assert.Equal(t, "deleteComentario_"+cf.c7.ID.String(), last.channel.Name())
	assert.Equal(t, dto.CommentDeletedEvent{
		CommentID:     created.ID,
		PublicationID: cf.publication.ID,
		CommunityID:   cf.c7.ID,
	}, last.payload)
}

func TestListComments_OldestFirst(t *testing.T) {
	ctx := context.Background()
	cf := newCommentFixture(t)
	svc := cf.comments()

	for _, text := range []string{"uno", "dos", "tres"} {
		_, err := svc.CreateComment(ctx, cf.bob.ID, &dto.CreateCommentRequest{
			PublicationID: cf.publication.ID.String(),
			CommunityID:   cf.c7.ID.String(),
			Text:          text,
		})
		require.NoError(t, err)
	}

	list, err := svc.ListByPublication(ctx, cf.publication.ID.String())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "uno", list[0].Text)
	assert.Equal(t, "tres", list[2].Text)
	assert.Equal(t, "bob", list[1].Author.Handle)
}
