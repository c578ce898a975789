package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"vibe-cli/internal/session"
)

// resumeMain 复用交互入口，只是先指定要恢复的会话。
// 用法：vibe-cli resume [session-id]，不带参数时恢复最近一次会话。
func resumeMain(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("vibe-cli resume")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() > 0 {
		cli.resumeSessionID = fs.Arg(0)
		if fs.NArg() > 1 {
			cli.prompt = strings.Join(fs.Args()[1:], " ")
		}
	} else if cli.resumeSessionID == "" {
		cli.resumeLast = true
	}
	cli.configOverrides = prependOverrides(root.overrides, cli.configOverrides)

	if err := startInteractiveSession(cli); err != nil {
		log.Errorf("resume failed: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// sessionsMain 列出保存过的会话。默认只看当前目录下的，-all 看全部。
func sessionsMain(args []string) {
	fs := flag.NewFlagSet("vibe-cli sessions", flag.ExitOnError)
	showAll := fs.Bool("all", false, "List sessions from every workdir")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	workdir, err := resolveWorkdir("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	records, err := session.List(*showAll, workdir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("no saved sessions")
		return
	}
	for _, rec := range records {
		fmt.Printf("%s  %s  %d messages  %s\n",
			rec.ID,
			rec.Updated.Format("2006-01-02 15:04"),
			len(rec.Messages),
			rec.Workdir,
		)
	}
}
