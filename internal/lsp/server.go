// Package lsp serves mapper generation as a code action over the language
// server protocol.
package lsp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/origadmin/mapgen/internal/config"
	"github.com/origadmin/mapgen/internal/core"
)

// ActionTitle is the title of the generation code action.
const ActionTitle = "Generate mapper"

// Server keeps the open documents of a client and answers code action requests.
type Server struct {
	version    string
	configFile string

	mu        sync.Mutex
	documents map[string][]byte

	handler protocol.Handler
}

// NewServer creates a server reporting version to clients. configFile is
// passed to every generation run.
func NewServer(version, configFile string) *Server {
	s := &Server{
		version:    version,
		configFile: configFile,
		documents:  make(map[string][]byte),
	}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentCodeAction: s.codeAction,
	}
	return s
}

// RunStdio serves the protocol over stdin and stdout until the client exits.
func (s *Server) RunStdio() error {
	slog.Info("Starting language server", "version", s.version)
	return server.NewServer(&s.handler, config.Application, false).RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindRefactorRewrite},
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    config.Application,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.setDocument(path, []byte(params.TextDocument.Text))
	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || len(params.ContentChanges) == 0 {
		return nil
	}
	switch change := params.ContentChanges[len(params.ContentChanges)-1].(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		s.setDocument(path, []byte(change.Text))
	case *protocol.TextDocumentContentChangeEventWhole:
		s.setDocument(path, []byte(change.Text))
	}
	return nil
}

func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	delete(s.documents, path)
	s.mu.Unlock()
	return nil
}

func (s *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil || !strings.HasSuffix(path, ".go") {
		return nil, nil
	}
	action, err := s.Action(context.Background(), path, params.Range.Start)
	if err != nil {
		slog.Warn("Code action failed", "file", path, "error", err)
		return nil, nil
	}
	if action == nil {
		return nil, nil
	}
	return []protocol.CodeAction{*action}, nil
}

// Action returns the generation code action for the stub at pos of path, or
// nil when there is no stub there.
func (s *Server) Action(ctx context.Context, path string, pos protocol.Position) (*protocol.CodeAction, error) {
	overlay := s.overlay()
	line, col := int(pos.Line)+1, 1
	if content, ok := overlay[path]; ok {
		col = byteColumn(content, int(pos.Line), int(pos.Character)) + 1
	}

	results, err := core.NewGenerator(core.Options{
		Dir:        filepath.Dir(path),
		Position:   fmt.Sprintf("%s:%d:%d", path, line, col),
		ConfigFile: s.configFile,
		DryRun:     true,
		Overlay:    overlay,
	}).Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	result := results[0]
	uri := pathToURI(result.Filename)
	kind := protocol.CodeActionKindRefactorRewrite
	return &protocol.CodeAction{
		Title: ActionTitle,
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				uri: {{
					Range: protocol.Range{
						Start: protocol.Position{},
						End:   endPosition(result.Original),
					},
					NewText: string(result.Content),
				}},
			},
		},
	}, nil
}

func (s *Server) setDocument(path string, content []byte) {
	s.mu.Lock()
	s.documents[path] = content
	s.mu.Unlock()
}

func (s *Server) overlay() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	overlay := make(map[string][]byte, len(s.documents))
	for path, content := range s.documents {
		overlay[path] = content
	}
	return overlay
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(filepath.FromSlash(parsed.Path)), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}

// endPosition is the position just past the last character of content, in
// UTF-16 code units.
func endPosition(content []byte) protocol.Position {
	var pos protocol.Position
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += utf16Len(r)
	}
	return pos
}

// byteColumn converts a UTF-16 character offset on the 0-based line of
// content into a byte offset on that line.
func byteColumn(content []byte, line, character int) int {
	for ; line > 0; line-- {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			return 0
		}
		content = content[i+1:]
	}
	col, units := 0, 0
	for col < len(content) && units < character {
		r, size := utf8.DecodeRune(content[col:])
		if r == '\n' {
			break
		}
		col += size
		units += int(utf16Len(r))
	}
	return col
}

func utf16Len(r rune) protocol.UInteger {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
