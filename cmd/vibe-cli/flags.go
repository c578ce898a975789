package main

import (
	"flag"
	"strings"
)

// stringSlice 允许同一 flag 重复出现。
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type rootArgs struct {
	overrides []string
}

// parseRootArgs 解析子命令之前的全局 -c 覆盖项。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("vibe-cli", flag.ContinueOnError)
	var overrides stringSlice
	fs.Var(&overrides, "c", "Override config value key=value (repeatable, applied before subcommand overrides)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{overrides: overrides}, fs.Args(), nil
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}

type interactiveArgs struct {
	cfgPath         string
	modelOverride   string
	prompt          string
	workdir         string
	resumeSessionID string
	resumeLast      bool
	autoApprove     bool
	configOverrides stringSlice
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cli := &interactiveArgs{}
	fs.StringVar(&cli.cfgPath, "config", "", "Path to config file (default ~/.vibe/config.toml)")
	fs.StringVar(&cli.modelOverride, "model", "", "Model override")
	fs.StringVar(&cli.modelOverride, "m", "", "Alias for --model")
	fs.StringVar(&cli.prompt, "prompt", "", "Initial prompt")
	fs.StringVar(&cli.workdir, "cd", "", "Working directory")
	fs.StringVar(&cli.workdir, "C", "", "Alias for --cd")
	fs.StringVar(&cli.resumeSessionID, "session", "", "Session id to resume")
	fs.BoolVar(&cli.resumeLast, "resume-last", false, "Resume most recent session")
	fs.BoolVar(&cli.autoApprove, "auto-approve", false, "Run mutating tools without asking")
	fs.Var(&cli.configOverrides, "c", "Override config value key=value (repeatable)")
	return fs, cli
}

// finalizePrompt 把剩余位置参数拼成初始 prompt。
func (cli *interactiveArgs) finalizePrompt(fs *flag.FlagSet) {
	if cli.prompt == "" && fs.NArg() > 0 {
		cli.prompt = strings.Join(fs.Args(), " ")
	}
}
