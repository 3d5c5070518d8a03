package lsp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const mapperSrc = `package shop

type Item struct {
	SKU string
}

type ItemDTO struct {
	SKU string
}

//go:mapgen
func ToDTO(i Item) ItemDTO {
	return ItemDTO{}
}
`

func writeModule(t *testing.T) string {
	t.Helper()
	t.Setenv("GOWORK", "off")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/shop\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapper.go"), []byte(mapperSrc), 0o644))
	return dir
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///tmp/a%20b/mapper.go")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/a b/mapper.go"), path)

	path, err = uriToPath("mapper.go")
	require.NoError(t, err)
	assert.Equal(t, "mapper.go", path)

	assert.Equal(t, protocol.DocumentUri("file:///tmp/a%20b/mapper.go"), pathToURI("/tmp/a b/mapper.go"))
}

func TestEndPosition(t *testing.T) {
	assert.Equal(t, protocol.Position{}, endPosition(nil))
	assert.Equal(t, protocol.Position{Line: 0, Character: 3}, endPosition([]byte("abc")))
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, endPosition([]byte("a\nb\n")))
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, endPosition([]byte("x\né😀")))
}

func TestByteColumn(t *testing.T) {
	content := []byte("package p\n\té😀x\n")
	assert.Equal(t, 0, byteColumn(content, 0, 0))
	assert.Equal(t, 4, byteColumn(content, 0, 4))
	assert.Equal(t, 3, byteColumn(content, 1, 2))
	assert.Equal(t, 7, byteColumn(content, 1, 4))
	assert.Equal(t, 8, byteColumn(content, 1, 100), "clamped to the line")
	assert.Equal(t, 0, byteColumn(content, 5, 1))
}

func TestDocuments(t *testing.T) {
	s := NewServer("test", "")
	uri := "file:///tmp/mapper.go"

	require.NoError(t, s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "package a\n"},
	}))
	assert.Equal(t, "package a\n", string(s.overlay()["/tmp/mapper.go"]))

	require.NoError(t, s.didChange(nil, &protocol.DidChangeTextDocumentParams{
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "package b\n"},
			protocol.TextDocumentContentChangeEventWhole{Text: "package c\n"},
		},
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
	}))
	assert.Equal(t, "package c\n", string(s.overlay()["/tmp/mapper.go"]))

	require.NoError(t, s.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, s.overlay())
}

func TestInitialize(t *testing.T) {
	s := NewServer("1.2.3", "")
	result, err := s.initialize(nil, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "mapgen", init.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *init.ServerInfo.Version)
	assert.NotNil(t, init.Capabilities.CodeActionProvider)
}

func TestAction(t *testing.T) {
	dir := writeModule(t)
	path := filepath.Join(dir, "mapper.go")
	s := NewServer("test", "")

	action, err := s.Action(context.Background(), path, protocol.Position{Line: 11, Character: 6})
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, ActionTitle, action.Title)
	require.NotNil(t, action.Kind)
	assert.Equal(t, protocol.CodeActionKindRefactorRewrite, *action.Kind)

	edits := action.Edit.Changes[pathToURI(path)]
	require.Len(t, edits, 1)
	assert.Equal(t, protocol.Position{Line: 14, Character: 0}, edits[0].Range.End)
	assert.Contains(t, edits[0].NewText, "func convert2ItemDTO(source *Item) *ItemDTO {")
	assert.NotContains(t, edits[0].NewText, "func ToDTO")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mapperSrc, string(onDisk), "code actions never write")
}

func TestAction_UsesOpenDocument(t *testing.T) {
	dir := writeModule(t)
	path := filepath.Join(dir, "mapper.go")
	s := NewServer("test", "")
	edited := strings.Replace(mapperSrc, "//go:mapgen\n", "", 1)
	s.setDocument(path, []byte(edited))

	// The stub is found by position even without its marker.
	action, err := s.Action(context.Background(), path, protocol.Position{Line: 10, Character: 0})
	require.NoError(t, err)
	require.NotNil(t, action)

	edits := action.Edit.Changes[pathToURI(path)]
	require.Len(t, edits, 1)
	assert.Equal(t, protocol.Position{Line: 13, Character: 0}, edits[0].Range.End)
}

func TestAction_NoStub(t *testing.T) {
	dir := writeModule(t)
	s := NewServer("test", "")

	action, err := s.Action(context.Background(), filepath.Join(dir, "mapper.go"), protocol.Position{Line: 2, Character: 0})
	require.NoError(t, err)
	assert.Nil(t, action)
}
