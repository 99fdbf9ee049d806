package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"pubgpt-tui/internal/app"
	"pubgpt-tui/internal/auth"
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/history"
	"pubgpt-tui/internal/logging"
	"pubgpt-tui/internal/messages"
	"pubgpt-tui/internal/mock"
	"pubgpt-tui/internal/stream"
	"pubgpt-tui/internal/tokens"
)

const defaultBackend = "http://localhost:8000"

func main() {
	cliApp := &cli.App{
		Name:  "pubgpt",
		Usage: "Interrogez vos données publicitaires en langage naturel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Usage:   "Backend URL",
				Value:   defaultBackend,
				EnvVars: []string{"BACKEND_URL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Write debug logs to this file",
				EnvVars: []string{"PUBGPT_LOG_FILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			chatCommand(),
			mockCommand(),
			loginCommand(),
			historyCommand(),
			healthCommand(),
		},
		DefaultCommand: "chat",
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Erreur: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) (*logging.Logger, error) {
	path := c.String("log-file")
	if path == "" {
		return logging.Nop(), nil
	}
	return logging.NewFile(logging.ParseLevel(c.String("log-level")), path)
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Start the interactive session",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "user-id",
				Usage:   "Skip login and use this user id",
				EnvVars: []string{"PUBGPT_USER_ID"},
			},
			&cli.BoolFlag{
				Name:  "chart",
				Usage: "Ask the backend to suggest a chart with each answer",
			},
			&cli.StringFlag{
				Name:  "resume",
				Usage: "Resume a conversation by session id",
			},
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "Directory for CSV exports",
			},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	backend := c.String("backend")
	store, err := auth.NewStore(backend, "")
	if err != nil {
		return err
	}
	if id := c.Int("user-id"); id > 0 {
		store.SetStatic(id)
	}
	userID, err := store.CurrentUserID()
	if err != nil {
		return fmt.Errorf("aucun utilisateur: lancez `pubgpt login` ou passez --user-id: %w", err)
	}

	client := stream.NewClient(backend,
		stream.WithTimeout(30*time.Second),
		stream.WithLogger(logger),
	)

	healthCtx, cancelHealth := context.WithTimeout(c.Context, 5*time.Second)
	err = client.Health(healthCtx)
	cancelHealth()
	if err != nil {
		return fmt.Errorf("backend injoignable (%s): %w", backend, err)
	}

	manager := conversation.NewManager(client, store, conversation.WithLogger(logger))

	if sessionID := c.String("resume"); sessionID != "" {
		histClient := history.NewClient(backend)
		detail, err := histClient.Get(c.Context, sessionID, true)
		if err != nil {
			return fmt.Errorf("reprise de la conversation %s: %w", sessionID, err)
		}
		manager.Restore(sessionID, detail.Restored())
	}

	model := app.New(app.Deps{
		Manager:       manager,
		Logger:        logger,
		ChartDemanded: c.Bool("chart"),
		ExportDir:     c.String("export-dir"),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	model.SetProgram(p)

	// Quota refresh runs outside the update loop and posts messages in.
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()
	go func() {
		tokenClient := tokens.NewClient(backend)
		for stats := range tokenClient.Poll(pollCtx, userID, 30*time.Second) {
			p.Send(messages.TokenStatsMsg{Stats: stats})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func mockCommand() *cli.Command {
	return &cli.Command{
		Name:  "mock",
		Usage: "Run the scripted mock backend",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port",
				Value: 8000,
			},
		},
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			return mock.NewServer(c.Int("port"), logger).Start()
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Authenticate against the backend",
		ArgsUsage: "<login> <password>",
		Action: func(c *cli.Context) error {
			login, password := c.Args().Get(0), c.Args().Get(1)
			if login == "" || password == "" {
				return fmt.Errorf("usage: pubgpt login <login> <password>")
			}
			store, err := auth.NewStore(c.String("backend"), "")
			if err != nil {
				return err
			}
			user, err := store.Login(c.Context, login, password)
			if err != nil {
				return err
			}
			fmt.Printf("Connecté en tant que %s (id %d)\n", user.Login, user.ID)
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse past conversations",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent conversations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "user-id", EnvVars: []string{"PUBGPT_USER_ID"}},
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: func(c *cli.Context) error {
					backend := c.String("backend")
					store, err := auth.NewStore(backend, "")
					if err != nil {
						return err
					}
					if id := c.Int("user-id"); id > 0 {
						store.SetStatic(id)
					}
					userID, err := store.CurrentUserID()
					if err != nil {
						return err
					}
					summaries, err := history.NewClient(backend).List(c.Context, userID, c.Int("limit"))
					if err != nil {
						return err
					}
					for _, s := range summaries {
						fmt.Printf("%s  %-40s  %d messages  %s\n",
							s.SessionID, s.Title, s.MessageCount,
							s.LastAccessedAt.Format("2006-01-02 15:04"))
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Show one conversation",
				ArgsUsage: "<session-id>",
				Action: func(c *cli.Context) error {
					sessionID := c.Args().First()
					if sessionID == "" {
						return fmt.Errorf("usage: pubgpt history show <session-id>")
					}
					detail, err := history.NewClient(c.String("backend")).Get(c.Context, sessionID, false)
					if err != nil {
						return err
					}
					for _, msg := range detail.Messages {
						fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
					}
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a conversation",
				ArgsUsage: "<session-id>",
				Action: func(c *cli.Context) error {
					sessionID := c.Args().First()
					if sessionID == "" {
						return fmt.Errorf("usage: pubgpt history delete <session-id>")
					}
					return history.NewClient(c.String("backend")).Delete(c.Context, sessionID)
				},
			},
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check backend availability",
		Action: func(c *cli.Context) error {
			client := stream.NewClient(c.String("backend"))
			if err := client.Health(c.Context); err != nil {
				return err
			}
			fmt.Println("Backend disponible")
			return nil
		},
	}
}
