package logs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/logshare/internal/logs"
)

func createLog(t *testing.T, svc *logs.Service, content string) logs.Log {
	t.Helper()
	log, err := svc.CreateLog(context.Background(), content, nil, 0)
	require.NoError(t, err)
	return log
}

func comment(t *testing.T, svc *logs.Service, in logs.NewComment) logs.Comment {
	t.Helper()
	c, err := svc.CreateComment(context.Background(), in)
	require.NoError(t, err)
	return c
}

func TestCreateCommentValidation(t *testing.T) {
	svc, _ := newService(t)
	log := createLog(t, svc, "one\ntwo\nthree")
	other := createLog(t, svc, "elsewhere")
	foreign := comment(t, svc, logs.NewComment{LogID: other.ID, LineNumber: 1, Content: "x", AuthorName: "a"})

	tests := []struct {
		name    string
		in      logs.NewComment
		wantErr error
	}{
		{"missing log id", logs.NewComment{LineNumber: 1, Content: "c", AuthorName: "a"}, logs.ErrInvalid},
		{"zero line", logs.NewComment{LogID: log.ID, Content: "c", AuthorName: "a"}, logs.ErrInvalid},
		{"line past end", logs.NewComment{LogID: log.ID, LineNumber: 4, Content: "c", AuthorName: "a"}, logs.ErrInvalid},
		{"blank content", logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "  ", AuthorName: "a"}, logs.ErrInvalid},
		{"blank author", logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "c", AuthorName: " "}, logs.ErrInvalid},
		{"unknown log", logs.NewComment{LogID: "00000000-0000-0000-0000-000000000000", LineNumber: 1, Content: "c", AuthorName: "a"}, logs.ErrNotFound},
		{"unknown parent", logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "c", AuthorName: "a", ParentID: "nope"}, logs.ErrInvalid},
		{"parent on another log", logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "c", AuthorName: "a", ParentID: foreign.ID}, logs.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateCommentFields(t *testing.T) {
	svc, _ := newService(t)
	log := createLog(t, svc, "one\ntwo")

	c := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 2, Content: "why?", AuthorName: "sam"})
	assert.True(t, logs.ValidID(c.ID))
	assert.Equal(t, log.ID, c.LogID)
	assert.Nil(t, c.AuthorEmail)
	assert.Nil(t, c.ParentID)

	withEmail := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 2, Content: "because", AuthorName: "kim", AuthorEmail: "kim@example.com", ParentID: c.ID})
	require.NotNil(t, withEmail.AuthorEmail)
	assert.Equal(t, "kim@example.com", *withEmail.AuthorEmail)
	require.NotNil(t, withEmail.ParentID)
	assert.Equal(t, c.ID, *withEmail.ParentID)
}

func TestCommentsByLogTree(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	log := createLog(t, svc, "one\ntwo\nthree")

	root1 := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "root 1", AuthorName: "a"})
	root2 := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 3, Content: "root 2", AuthorName: "b"})
	reply := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "reply", AuthorName: "c", ParentID: root1.ID})
	comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "nested", AuthorName: "d", ParentID: reply.ID})
	comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "reply 2", AuthorName: "e", ParentID: root1.ID})

	tree, err := svc.CommentsByLog(ctx, log.ID)
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, root1.ID, tree[0].ID)
	assert.Equal(t, root2.ID, tree[1].ID)
	assert.Empty(t, tree[1].Replies)

	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "reply", tree[0].Replies[0].Content)
	assert.Equal(t, "reply 2", tree[0].Replies[1].Content)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested", tree[0].Replies[0].Replies[0].Content)

	n, err := svc.CommentCount(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	lines, err := svc.LinesWithComments(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, lines)
}

func TestCommentsByLine(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	log := createLog(t, svc, "one\ntwo")

	root := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "on one", AuthorName: "a"})
	comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 2, Content: "on two", AuthorName: "b"})
	// A reply filed under another line loses its parent in the per-line view.
	comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 2, Content: "stray", AuthorName: "c", ParentID: root.ID})

	tree, err := svc.CommentsByLine(ctx, log.ID, 2)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "on two", tree[0].Content)

	tree, err = svc.CommentsByLine(ctx, log.ID, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Replies)
}

func TestDeleteCommentRemovesSubtree(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	log := createLog(t, svc, "one")

	keep := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "keep", AuthorName: "a"})
	root := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "drop", AuthorName: "a"})
	child := comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "child", AuthorName: "b", ParentID: root.ID})
	comment(t, svc, logs.NewComment{LogID: log.ID, LineNumber: 1, Content: "grandchild", AuthorName: "c", ParentID: child.ID})

	require.NoError(t, svc.DeleteComment(ctx, root.ID))

	tree, err := svc.CommentsByLog(ctx, log.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, keep.ID, tree[0].ID)

	n, err := svc.CommentCount(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, svc.DeleteComment(ctx, root.ID), logs.ErrNotFound)
}

func TestCommentsOfUnknownLog(t *testing.T) {
	svc, _ := newService(t)

	tree, err := svc.CommentsByLog(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, tree)
}
