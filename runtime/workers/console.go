package workers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"replydesk/conversation"
)

// ConsoleWorker is the interactive command surface: a prompt on one
// side, the conversation controller on the other. Input is read on its
// own goroutine so the loop stays responsive to shutdown.
type ConsoleWorker struct {
	log        *slog.Logger
	controller *conversation.Controller
	operator   string
	in         io.Reader
	out        io.Writer
}

func NewConsoleWorker(log *slog.Logger, controller *conversation.Controller, operator string, in io.Reader, out io.Writer) *ConsoleWorker {
	return &ConsoleWorker{log: log, controller: controller, operator: operator, in: in, out: out}
}

func (w *ConsoleWorker) Run(ctx context.Context) error {
	w.log.Info("Starting console worker", "operator", w.operator)
	fmt.Fprintln(w.out, "replydesk ready, type help for the command list")

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go w.readLoop(lines, done)

	for {
		fmt.Fprint(w.out, "> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(w.out, "bye")
			return nil
		case line, ok := <-lines:
			if !ok {
				w.log.Info("Console input closed")
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			reply := w.controller.Handle(ctx, w.operator, line)
			fmt.Fprintln(w.out, reply)
		}
	}
}

func (w *ConsoleWorker) readLoop(lines chan<- string, done <-chan struct{}) {
	defer close(lines)

	scanner := bufio.NewScanner(w.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
}

// Notify prints operator notifications above the prompt, so queue
// activity is visible without polling.
func (w *ConsoleWorker) Notify(_ context.Context, text string) error {
	_, err := fmt.Fprintf(w.out, "\n*** %s\n> ", text)
	return err
}
