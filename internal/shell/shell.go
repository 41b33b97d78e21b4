// Package shell implements the interactive prompt of the aiosqlite3
// command. It drives the async bridge the same way library callers do:
// every statement is dispatched and awaited, one at a time.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/zfl1011/aiosqlite3"
	"github.com/zfl1011/aiosqlite3/internal/util/sysutil"
	"github.com/zfl1011/aiosqlite3/internal/version"
)

type Shell struct {
	conf        Config
	conn        *aiosqlite3.Conn
	ctx         context.Context
	stop        context.CancelFunc
	historyPath string
}

func NewShell(
	ctx context.Context,
	stop context.CancelFunc,
	conf Config,
	conn *aiosqlite3.Conn,
) Shell {
	return Shell{
		conf:        conf,
		conn:        conn,
		ctx:         ctx,
		stop:        stop,
		historyPath: filepath.Join(os.TempDir(), ".aiosqlite3_history"),
	}
}

// Run runs the aiosqlite3 shell.
func Run(ctx context.Context) error {
	conf := MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.CLIVersion())

	fut, err := aiosqlite3.Connect(aiosqlite3.Config{
		Database:       conf.Database,
		Workers:        conf.Workers,
		Echo:           conf.Echo,
		IsolationLevel: conf.IsolationLevel,
	})
	if err != nil {
		return err
	}
	conn, err := fut.Await(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", conf.Database, err)
	}
	defer conn.Close(context.Background())

	sh := NewShell(ctx, stop, conf, conn)
	go func() {
		if err := sh.Start(); err != nil {
			fmt.Println(err)
			stop()
		}
	}()

	<-ctx.Done()
	fmt.Printf("\nGoodbye!\n\n")
	return nil
}

func (s *Shell) Start() error {
	fmt.Println()
	fmt.Printf("Connected to %s\n", s.conf.Database)
	fmt.Println(`Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)
	fmt.Println()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
			input := s.prompt()

			if input == "" {
				continue
			}

			if input == "exit" || input == ".exit" || input == ".quit" {
				s.Shutdown()
				return nil
			}

			if input == "clear" || input == ".clear" {
				sysutil.ClearTerminal()
				continue
			}

			if input == "help" || input == ".help" {
				cmdHelp()
				continue
			}

			if input == ".tables" {
				cmdQuery(s, `SELECT name FROM sqlite_master WHERE type = 'table'`)
				continue
			}

			if input == ".schema" {
				cmdQuery(s, `SELECT sql FROM sqlite_master WHERE sql IS NOT NULL`)
				continue
			}

			if input == ".changes" {
				cmdChanges(s)
				continue
			}

			if strings.HasPrefix(input, ".dump") {
				cmdDump(s, strings.TrimSpace(strings.TrimPrefix(input, ".dump")))
				continue
			}

			if strings.HasPrefix(input, ".") {
				fmt.Println("Unknown command, type .help for usage hints")
				continue
			}

			cmdQuery(s, input)
		}
	}
}

// Shutdown stops the shell.
func (s *Shell) Shutdown() {
	s.stop()
}

// prompt shows the prompt and reads the input from the user.
func (s *Shell) prompt() string {
	label := "aiosqlite3> "
	if inTxn, err := s.conn.InTransaction(); err == nil && inTxn {
		label = "aiosqlite3(txn)> "
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(cmdHelpCompleter)

	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}

	prompt, err := line.Prompt(label)
	if err != nil {
		if err == liner.ErrPromptAborted {
			fmt.Println("CTRL+C pressed, exiting...")
			return ".quit"
		}
		return ""
	}

	line.AppendHistory(prompt)
	if file, err := os.Create(s.historyPath); err == nil {
		_, _ = line.WriteHistory(file)
		file.Close()
	}

	return strings.TrimSpace(prompt)
}
