package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }
func (s *stubExec) record(c string) error {
	s.calls = append(s.calls, c)
	return s.err
}
func (s *stubExec) Register(context.Context) error { return s.record("register") }
func (s *stubExec) Login(context.Context) error {
	s.loggedIn = true
	return s.record("login")
}
func (s *stubExec) Logout(context.Context) error {
	s.loggedIn = false
	return s.record("logout")
}
func (s *stubExec) Me(context.Context) error                 { return s.record("me") }
func (s *stubExec) List(context.Context) error               { return s.record("list") }
func (s *stubExec) Upload(_ context.Context, p string) error { return s.record("upload " + p) }
func (s *stubExec) Show(_ context.Context, id string) error  { return s.record("show " + id) }
func (s *stubExec) Download(_ context.Context, id, dest string) error {
	return s.record("download " + id + " " + dest)
}
func (s *stubExec) Describe(_ context.Context, id string) error { return s.record("describe " + id) }
func (s *stubExec) Delete(_ context.Context, id string) error   { return s.record("delete " + id) }

// capturePrintln swaps printlnFn for the duration of the test.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var out []string
	old := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = old })
	return &out
}

func TestRunREPL_Dispatch(t *testing.T) {
	out := capturePrintln(t)
	s := &stubExec{}
	input := strings.Join([]string{
		"list",
		"",
		"login",
		"l",
		"upload ./a.png",
		"show 1",
		"download 1 /tmp/x",
		"describe 1",
		"delete 1",
		"me",
		"logout",
		"exit",
		"list",
	}, "\n") + "\n"

	runREPL(context.Background(), s, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "list", "upload ./a.png", "show 1", "download 1 /tmp/x",
		"describe 1", "delete 1", "me", "logout",
	}, s.calls)
	assert.Contains(t, *out, "Please login first")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_UsageAndErrors(t *testing.T) {
	out := capturePrintln(t)
	s := &stubExec{loggedIn: true, err: errors.New("boom")}
	input := "upload\ndownload 1\nfoo\nhelp\nme\n"

	runREPL(context.Background(), s, func() string { return "(x)" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"me"}, s.calls)
	assert.Contains(t, *out, "Usage: upload <path>")
	assert.Contains(t, *out, "Usage: download <id> <dest>")
	assert.Contains(t, *out, "Unknown command: foo")
	assert.Contains(t, *out, "Error: boom")
	assert.Contains(t, *out, "mv (x)>")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)
	s := &stubExec{loggedIn: true}
	runREPL(context.Background(), s, func() string { return "" }, bufio.NewReader(strings.NewReader("me")))
	assert.Equal(t, []string{"me"}, s.calls)
}
