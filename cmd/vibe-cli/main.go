package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vibe-cli/internal/config"
	"vibe-cli/internal/events"
	"vibe-cli/internal/execution"
	"vibe-cli/internal/logger"
	"vibe-cli/internal/repl"
	"vibe-cli/internal/session"
	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
	"vibe-cli/internal/tools/dispatcher"
	"vibe-cli/internal/tui"
)

var log = logger.Named("main")

func main() {
	logger.Configure()
	if closer, path, err := logger.SetupFile(logger.DefaultLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log file unavailable: %v\n", err)
	} else {
		defer closer.Close()
		log.Debugf("logging to %s", path)
	}
	if closer, _, err := tools.SetupToolsLog(tools.DefaultToolsLogPath); err != nil {
		log.Warnf("tools log unavailable: %v", err)
	} else {
		defer closer.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if len(rest) > 0 {
		switch rest[0] {
		case "exec":
			execMain(root, rest[1:])
			return
		case "resume":
			resumeMain(root, rest[1:])
			return
		case "sessions":
			sessionsMain(rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("vibe-cli")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	cli.finalizePrompt(fs)
	cli.configOverrides = prependOverrides(root.overrides, cli.configOverrides)

	if err := startInteractiveSession(cli); err != nil {
		log.Errorf("session failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// startInteractiveSession 按配置把引擎、工具分发和 TUI 串起来，跑完一次交互会话。
func startInteractiveSession(cli *interactiveArgs) error {
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

	var seed session.Record
	switch {
	case cli.resumeSessionID != "":
		seed, err = session.Load(cli.resumeSessionID)
		if err != nil {
			return fmt.Errorf("resume session %s: %w", cli.resumeSessionID, err)
		}
	case cli.resumeLast:
		seed, err = session.Last()
		if err != nil {
			return fmt.Errorf("resume last session: %w", err)
		}
	}
	sessionID := seed.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if seed.Workdir != "" && cli.workdir == "" {
		workdir = seed.Workdir
	}

	client := buildModelClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()
	defer bus.Close()

	shell := tools.NewShellManager()
	approvals := tools.NewApprovalStore()
	orch := tools.NewOrchestratorWith(tools.OrchestratorOptions{
		Approvals:   approvals,
		AutoApprove: cli.autoApprove,
	})
	todos := todo.NewStore()
	if len(seed.Todos) > 0 {
		todos.Replace(seed.Todos)
	}
	disp := dispatcher.New(tools.RuntimeOptions{
		Workdir:      workdir,
		Exec:         shell,
		PatchLimit:   cfg.MaxPatchSizeBytes,
		Todos:        todos,
		Orchestrator: orch,
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
		Approvals: approvals,
	})
	engine.Start(ctx)
	defer engine.Close()

	if len(seed.Messages) > 0 {
		engine.SeedHistory(sessionID, seed.Messages)
	}

	log.WithField("session", sessionID).Infof("starting interactive session in %s", workdir)

	result, err := tui.Run(tui.Options{
		Gateway:         repl.NewGateway(manager),
		Model:           displayModel(cfg),
		Workdir:         workdir,
		SessionID:       sessionID,
		InitialPrompt:   cli.prompt,
		InitialMessages: seed.Messages,
	})
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if len(result.History) == 0 {
		return nil
	}
	path, err := session.Save(session.Record{
		ID:       result.SessionID,
		Workdir:  workdir,
		Messages: result.History,
		Todos:    result.Todos,
	})
	if err != nil {
		log.Warnf("failed to save session: %v", err)
		return nil
	}
	log.Debugf("session saved to %s", path)
	fmt.Printf("To continue this session, run: vibe-cli resume %s\n", result.SessionID)
	return nil
}

// resolveWorkdir 把 -cd 参数规整为绝对路径，缺省使用当前目录。
func resolveWorkdir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve workdir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workdir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workdir %s is not a directory", dir)
	}
	return abs, nil
}

// displayModel 给状态栏挑一个可读的模型名。
func displayModel(cfg config.Config) string {
	switch {
	case cfg.Model != "":
		return cfg.Model
	case cfg.Token == "":
		return "echo"
	default:
		return cfg.Provider
	}
}
