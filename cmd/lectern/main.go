// Copyright 2025 Poiesic Systems
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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/lectern"
	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lectern",
		Usage: "Academic document understanding and retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Process a document into knowledge points, outline and searchable chunks",
				ArgsUsage: "<pdf, text file, or directory of page files>",
				Action:    ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Document kind (lecture or assignment)",
						Value: "lecture",
					},
					&cli.StringFlag{
						Name:  "course",
						Usage: "Course identifier to group documents under",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "Document identifier (defaults to a random UUID)",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Retrieve formatted context for a query",
				ArgsUsage: "<query>",
				Action:    askCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "document",
						Usage: "Restrict retrieval to these document IDs",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search and print the ranked chunks",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "document",
						Usage: "Restrict search to these document IDs",
					},
				),
			},
			{
				Name:      "outline",
				Usage:     "Print the stored outline of a document",
				ArgsUsage: "<document-id>",
				Action:    outlineCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				),
			},
			{
				Name:      "course-outline",
				Usage:     "Synthesize a course-level outline across documents",
				ArgsUsage: "<course-id>",
				Action:    courseOutlineCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List stored documents",
				Action: listCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "course",
						Usage: "Only list documents of this course",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Text-generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openLibrary(c *cli.Context) (*lectern.Library, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return lectern.OpenLibrary(c.String("db"), lectern.WithAIConfig(aiConfig))
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("a document path is required")
	}

	kind := strings.ToLower(c.String("kind"))
	if kind != string(core.KindLecture) && kind != string(core.KindAssignment) {
		return fmt.Errorf("invalid kind %q: must be lecture or assignment", kind)
	}

	pages, err := loadPages(path)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	document := &core.Document{
		Id:       c.String("id"),
		CourseID: c.String("course"),
		Title:    c.String("title"),
	}
	if document.Id == "" {
		document.Id = uuid.NewString()
	}
	if document.Title == "" {
		document.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	fmt.Fprintf(os.Stderr, "Document: %s (%s, %d pages)\n", document.Id, kind, len(pages))

	onProgress := func(event pipeline.ProgressEvent) {
		fmt.Fprintf(os.Stderr, "\r%-12s %3.0f%%", event.Stage, event.Overall*100)
	}

	ctx := context.Background()
	if kind == string(core.KindAssignment) {
		err = library.IngestAssignment(ctx, document, pages, onProgress)
	} else {
		err = library.IngestLecture(ctx, document, pages, onProgress)
	}
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("%s\n", document.Id)
	return nil
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	answer := library.Retrieve(context.Background(), query, c.StringSlice("document"))
	if answer == "" {
		fmt.Fprintln(os.Stderr, "no matching content")
		return nil
	}
	fmt.Println(answer)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	results, err := library.Search(context.Background(), query, c.StringSlice("document"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i, result := range results {
		fmt.Printf("%2d. [%.4f] %s (page %d)\n    %s\n",
			i+1, result.Score, result.Chunk.DocumentID, result.Chunk.Metadata.Page,
			firstLine(result.Chunk.Content))
	}
	return nil
}

func outlineCommand(c *cli.Context) error {
	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("a document ID is required")
	}

	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	outline, err := library.Outline(context.Background(), documentID)
	if err != nil {
		return fmt.Errorf("failed to load outline: %w", err)
	}

	fmt.Printf("%s (%s)\n", outline.Title, outline.Subject)
	for _, section := range outline.Sections {
		fmt.Printf("  %s: %s\n", section.Title, section.BriefDescription)
		for _, point := range section.KnowledgePoints {
			fmt.Printf("    - %s\n", point)
		}
	}
	if outline.Summary != "" {
		fmt.Printf("\n%s\n", outline.Summary)
	}
	return nil
}

func courseOutlineCommand(c *cli.Context) error {
	courseID := c.Args().First()
	if courseID == "" {
		return fmt.Errorf("a course ID is required")
	}

	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	outline, err := library.CourseOutline(context.Background(), courseID)
	if err != nil {
		return fmt.Errorf("failed to build course outline: %w", err)
	}

	fmt.Printf("%s\n", outline.Title)
	for _, topic := range outline.Topics {
		fmt.Printf("  %s\n", topic.Title)
		for _, subtopic := range topic.Subtopics {
			fmt.Printf("    - %s\n", subtopic)
		}
	}
	if outline.Summary != "" {
		fmt.Printf("\n%s\n", outline.Summary)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	library, err := openLibrary(c)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer library.Close()

	documents, err := library.Documents(context.Background(), c.String("course"))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	for _, document := range documents {
		detail := ""
		if document.StatusDetail != "" {
			detail = " (" + document.StatusDetail + ")"
		}
		fmt.Printf("%s  %-10s  %-10s  %3d pages  %s%s\n",
			document.Id, document.Kind, document.Status, document.PageCount, document.Title, detail)
	}
	return nil
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	const max = 120
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
