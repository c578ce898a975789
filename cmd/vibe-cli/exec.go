package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"vibe-cli/internal/config"
	"vibe-cli/internal/events"
	"vibe-cli/internal/execution"
	"vibe-cli/internal/repl"
	"vibe-cli/internal/session"
	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
	"vibe-cli/internal/tools/dispatcher"
)

const execOutputWidth = 100

type execArgs struct {
	cfgPath         string
	modelOverride   string
	workdir         string
	noSave          bool
	configOverrides stringSlice
}

// execMain 非交互模式：执行一条 prompt，把 EQ 事件渲染到标准输出后退出。
// 没有人守在终端前，所以改动类工具一律自动批准。
func execMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("vibe-cli exec", flag.ExitOnError)
	cli := &execArgs{}
	fs.StringVar(&cli.cfgPath, "config", "", "Path to config file (default ~/.vibe/config.toml)")
	fs.StringVar(&cli.modelOverride, "model", "", "Model override")
	fs.StringVar(&cli.modelOverride, "m", "", "Alias for --model")
	fs.StringVar(&cli.workdir, "cd", "", "Working directory")
	fs.StringVar(&cli.workdir, "C", "", "Alias for --cd")
	fs.BoolVar(&cli.noSave, "no-save", false, "Do not persist the session on exit")
	fs.Var(&cli.configOverrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: vibe-cli exec [flags] <prompt>")
		os.Exit(2)
	}
	cli.configOverrides = prependOverrides(root.overrides, cli.configOverrides)

	if err := runExec(cli, prompt); err != nil {
		log.Errorf("exec failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runExec(cli *execArgs, prompt string) error {
	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyOverrides(&cfg, cli.configOverrides); err != nil {
		return err
	}
	if cli.modelOverride != "" {
		cfg.Model = cli.modelOverride
	}
	workdir, err := resolveWorkdir(cli.workdir)
	if err != nil {
		return err
	}

	client := buildModelClient(cfg)
	sessionID := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	defer bus.Close()

	shell := tools.NewShellManager()
	todos := todo.NewStore()
	disp := dispatcher.New(tools.RuntimeOptions{
		Workdir:      workdir,
		Exec:         shell,
		PatchLimit:   cfg.MaxPatchSizeBytes,
		Todos:        todos,
		Orchestrator: tools.NewOrchestrator(),
	}, bus)
	disp.Start(ctx)

	manager := events.NewManager(events.ManagerConfig{})
	engine := execution.NewEngine(execution.Options{
		Manager: manager,
		Client:  client,
		Bus:     bus,
		Defaults: execution.SessionDefaults{
			Model:  cfg.Model,
			System: systemPrompt(workdir),
		},
	})
	engine.Start(ctx)
	defer engine.Close()

	renderer := repl.NewEQRenderer(repl.EQRendererOptions{
		SessionID: sessionID,
		Width:     execOutputWidth,
		Writer:    os.Stdout,
	})

	sub := manager.Subscribe()
	if _, err := manager.SubmitUserInput(ctx,
		[]events.InputMessage{{Role: "user", Content: prompt}},
		events.InputContext{SessionID: sessionID, Model: cfg.Model},
	); err != nil {
		return fmt.Errorf("submit input: %w", err)
	}

	var taskErr error
loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-sub:
			if !ok {
				break loop
			}
			renderer.Handle(evt)
			switch evt.Type {
			case events.EventError:
				if msg, ok := evt.Payload.(string); ok && msg != "" {
					taskErr = fmt.Errorf("%s", msg)
				}
			case events.EventTaskCompleted:
				break loop
			}
		}
	}

	if !cli.noSave {
		rec := session.Record{
			ID:       sessionID,
			Workdir:  workdir,
			Messages: engine.History(sessionID),
			Todos:    todos.List(),
		}
		if len(rec.Messages) > 0 {
			if _, err := session.Save(rec); err != nil {
				log.Warnf("failed to save session: %v", err)
			} else {
				fmt.Printf("\nTo continue this session, run: vibe-cli resume %s\n", sessionID)
			}
		}
	}
	return taskErr
}
