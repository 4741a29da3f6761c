package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlesng35/formstore/internal/client"
)

const apiEnvVar = "FORMCTL_API"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL  string
		timeout time.Duration
	)

	defaultAPI := os.Getenv(apiEnvVar)
	if defaultAPI == "" {
		defaultAPI = client.DefaultBaseURL
	}

	rootCmd := &cobra.Command{
		Use:          "formctl",
		Short:        "Submit and inspect form entries",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API base URL (env "+apiEnvVar+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	newClient := func() (*client.Client, error) {
		return client.New(apiURL)
	}
	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	rootCmd.AddCommand(submitCmd(newClient, withTimeout))
	rootCmd.AddCommand(listCmd(newClient, withTimeout))
	rootCmd.AddCommand(healthCmd(newClient, withTimeout))
	rootCmd.AddCommand(dbTestCmd(newClient, withTimeout))
	return rootCmd
}

type clientFactory func() (*client.Client, error)

type contextFactory func(cmd *cobra.Command) (context.Context, context.CancelFunc)

func submitCmd(newClient clientFactory, withTimeout contextFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [value...]",
		Short: "Submit each value through the form; reads one value per line from stdin without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			values := args
			if len(values) == 0 {
				values, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			form := client.NewForm(c)
			failed := 0
			for _, value := range values {
				ctx, cancel := withTimeout(cmd)
				form.SetInput(value)
				form.Submit(ctx)
				cancel()

				state := form.State()
				fmt.Fprintln(cmd.OutOrStdout(), state.Message)
				if state.Message != client.MessageSaved {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d values were not saved", failed, len(values))
			}
			return nil
		},
	}
}

func listCmd(newClient clientFactory, withTimeout contextFactory) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			entries, err := c.ListEntries(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", e.ID, e.CreatedAt.Format(time.RFC3339), e.Value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func healthCmd(newClient clientFactory, withTimeout contextFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			status, err := c.Health(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

func dbTestCmd(newClient clientFactory, withTimeout contextFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "db-test",
		Short: "Probe the API database connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			result, err := c.DBTest(ctx)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Connected {
				return errors.New("database not connected")
			}
			return nil
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return values, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
