// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command research-assistant answers research questions with a
// tool-calling model, printing structured reports and saving them on
// request.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nlpodyssey/research-assistant-go/config"
	"github.com/nlpodyssey/research-assistant-go/research"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lookup, err := config.EnvLookup(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	env := environment{
		lookup:    lookup,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		newModel:  defaultModel,
		newSearch: defaultSearch,
	}
	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(env environment) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "research-assistant",
		Short: "Research assistant powered by a tool-calling LLM",
		Long: `Research assistant powered by a tool-calling LLM.

Type a research question at the prompt. The assistant searches the web and
Wikipedia, then prints a structured answer. Mention "save", "store", "write"
or "file" in the question to append the report to the output file.
Type "quit" to exit.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			err = research.RunLoop(ctx, a.assistant, env.stdin, env.stdout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	rootCmd.AddCommand(askCmd(env), historyCmd(env))
	return rootCmd
}

func askCmd(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query...>",
		Short: "Answer a single research question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			_, err = a.assistant.Ask(ctx, strings.Join(args, " "), env.stdout)
			return err
		},
	}
}

func historyCmd(env environment) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent research results from the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(env)
			if err != nil {
				return err
			}
			if cfg.HistoryDSN == "" {
				return errors.New("no archive configured: set RESEARCH_HISTORY_DSN")
			}

			archive, err := openArchive(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = archive.Close(context.WithoutCancel(ctx)) }()

			entries, err := archive.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, err = fmt.Fprintln(env.stdout, "No research results archived yet.")
				return err
			}
			for _, e := range entries {
				_, err = fmt.Fprintf(env.stdout, "%s  %s  (%q)\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Topic, e.Query)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results to list (0 for all)")
	return cmd
}
