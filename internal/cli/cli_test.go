package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
	}{
		{name: "successful read", input: "test input\n", expectedValue: "test input"},
		{name: "extra whitespace", input: "  test input  \n", expectedValue: "test input"},
		{name: "empty line", input: "\n", expectedValue: ""},
		{name: "no trailing newline", input: "last", expectedValue: "last"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))
			result, err := nbr.ReadLine(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestNonBlockingReader_EOF(t *testing.T) {
	_, err := NewNonBlockingReader(strings.NewReader("")).ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestNonBlockingReader_ContextCancellation(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewNonBlockingReader(strings.NewReader("x\n")).ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := NewNonBlockingReader(pr).ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "sim\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			ok, err := p.Confirm(context.Background(), "Delete this category?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Delete this category? [y/N]")
		})
	}
}

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\nana@example.com\nsecret\n"), &out)
	ctx := context.Background()

	v, err := p.Ask(ctx, "Type", "PF")
	require.NoError(t, err)
	assert.Equal(t, "PF", v)

	v, err = p.Ask(ctx, "Email", "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", v)

	v, err = p.AskSecret(ctx, "Password")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	assert.Contains(t, out.String(), "Type [PF]:")
}

func TestAutoConfirm(t *testing.T) {
	ok, err := AutoConfirm{}.Confirm(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func TestInterruptHandler_StopReleases(t *testing.T) {
	h := NewInterruptHandler(&syncBuffer{}, "interrupted")
	ctx, stop := h.HandleInterrupts(context.Background())

	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
	assert.False(t, h.WasInterrupted())
}

func TestInterruptHandler_MessageOnce(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Interrupted")

	h.interrupt()
	h.interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.buf.String(), "Interrupted"))
}

func TestProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, 3, "Counting subcategories")

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Step()
		}()
	}
	wg.Wait()
	p.Finish()
}

func TestFormatBalance(t *testing.T) {
	assert.Contains(t, FormatBalance("R$ 10,00", true), "R$ 10,00")
	assert.Contains(t, FormatBalance("-R$ 10,00", false), "-R$ 10,00")
}
