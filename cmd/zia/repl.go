package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"zia/internal/bot"
)

// lineReader is the part of a readline instance the loop needs
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

type repl struct {
	bot      *bot.Bot
	out      io.Writer
	userID   string
	username string
	pending  []string
}

func newREPL(b *bot.Bot, out io.Writer, userID, username string) *repl {
	if username == "" {
		username = userID
	}
	return &repl{bot: b, out: out, userID: userID, username: username}
}

func (r *repl) prompt() string {
	return r.username + "> "
}

func (r *repl) run(ctx context.Context, in lineReader) error {
	for {
		line, err := in.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if len(r.pending) > 0 {
				r.pending = nil
				in.SetPrompt(r.prompt())
				continue
			}
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		message, complete := r.accumulate(line)
		if !complete {
			in.SetPrompt(strings.Repeat(" ", len(r.username)) + "| ")
			continue
		}
		in.SetPrompt(r.prompt())

		if message == "" {
			continue
		}
		if strings.HasPrefix(message, ":") {
			if quit := r.meta(message); quit {
				return nil
			}
			in.SetPrompt(r.prompt())
			continue
		}
		r.send(ctx, message)
	}
}

// accumulate joins continuation lines. A message continues while it ends in a
// backslash or has an unclosed code fence.
func (r *repl) accumulate(line string) (string, bool) {
	if strings.HasSuffix(line, "\\") {
		r.pending = append(r.pending, strings.TrimSuffix(line, "\\"))
		return "", false
	}
	r.pending = append(r.pending, line)
	joined := strings.Join(r.pending, "\n")
	if strings.Count(joined, "```")%2 == 1 {
		return "", false
	}
	r.pending = nil
	return strings.TrimSpace(joined), true
}

// meta runs a REPL command and reports whether the loop should stop
func (r *repl) meta(line string) bool {
	tokens, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(r.out, "parse command failed: %v\n", err)
		return false
	}
	if len(tokens) == 0 {
		return false
	}

	switch tokens[0] {
	case ":quit", ":exit", ":q":
		fmt.Fprintln(r.out, "bye")
		return true
	case ":help":
		fmt.Fprintln(r.out, "REPL commands:")
		fmt.Fprintln(r.out, "  :user <id>      switch the user id the bot sees")
		fmt.Fprintln(r.out, "  :name <name>    change the display name (quote names with spaces)")
		fmt.Fprintln(r.out, "  :whoami         show the current identity")
		fmt.Fprintln(r.out, "  :quit           leave")
		fmt.Fprintf(r.out, "Anything else is sent to the bot. Try %shelp.\n", r.bot.Prefix())
		fmt.Fprintln(r.out, "End a line with \\ or open a ``` fence to write several lines.")
	case ":user":
		if len(tokens) != 2 {
			fmt.Fprintln(r.out, "usage: :user <id>")
			return false
		}
		if r.username == r.userID {
			r.username = tokens[1]
		}
		r.userID = tokens[1]
		fmt.Fprintf(r.out, "now chatting as %s (%s)\n", r.username, r.userID)
	case ":name":
		if len(tokens) < 2 {
			fmt.Fprintln(r.out, "usage: :name <name>")
			return false
		}
		r.username = strings.Join(tokens[1:], " ")
		fmt.Fprintf(r.out, "display name set to %s\n", r.username)
	case ":whoami":
		fmt.Fprintf(r.out, "%s (%s)\n", r.username, r.userID)
	default:
		fmt.Fprintf(r.out, "unknown REPL command %s, try :help\n", tokens[0])
	}
	return false
}

func (r *repl) send(ctx context.Context, content string) {
	replies := r.bot.Handle(ctx, bot.Message{
		UserID:    r.userID,
		Username:  r.username,
		ChannelID: "terminal",
		Content:   content,
	})
	if len(replies) == 0 {
		fmt.Fprintf(r.out, "(not a command, try %shelp)\n", r.bot.Prefix())
		return
	}
	for _, reply := range replies {
		fmt.Fprintln(r.out, formatReply(reply))
	}
}
