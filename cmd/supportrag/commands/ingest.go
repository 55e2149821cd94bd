package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/config"
	"github.com/54b3r/supportrag-go/internal/ingestion"
	"github.com/54b3r/supportrag-go/internal/logging"
)

// defaultDocument is the FAQ/policy document ingested when --file is omitted.
const defaultDocument = "data/faq.txt"

// NewIngestCmd constructs the `supportrag ingest` command, which splits the
// FAQ/policy document into paragraphs, embeds them and stores them in the
// configured vector store.
func NewIngestCmd() *cobra.Command {
	var file string
	var source string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest the FAQ/policy document into the vector store",
		Long: `Split the FAQ/policy document into paragraphs, embed each one and
insert it into the vector store selected by VECTOR_STORE.

Chunks are processed in order and the run stops at the first failure.
Chunks inserted before the failure remain in the store, so re-running
after a partial failure inserts duplicates.

--file accepts a local path, an http(s) URL or an s3://bucket/key location
(S3_* variables configure the object store).

Examples:
  supportrag ingest
  supportrag ingest --file ./policy.txt --source "TechNova AB – Returpolicy"
  supportrag ingest --file s3://technova-docs/faq.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			raw, err := ingestion.NewLoader(cfg.S3.Loader()).Load(ctx, file)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			chunks := len(ingestion.ChunkText(raw))
			if chunks == 0 {
				log.Warn("document contains no paragraphs, nothing to ingest", slog.String("file", file))
				return nil
			}
			log.Info("document loaded", slog.String("file", file), slog.Int("chunks", chunks))

			b, err := openBackends(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer b.Close()

			pipeline, err := ingestion.NewPipeline(b.embedder, b.store)
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			n, err := pipeline.Ingest(ctx, raw, source, func(p ingestion.Progress) {
				log.Info(fmt.Sprintf("[%d/%d] inserted chunk", p.Index, p.Total))
			})
			if err != nil {
				log.Error("ingestion aborted",
					slog.Int("inserted", n),
					slog.Int("total", chunks),
					slog.Any("error", err),
				)
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingestion complete", slog.Int("chunks", n), slog.String("store", cfg.Store.Backend))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", defaultDocument, "Document to ingest: local path, http(s) URL or s3://bucket/key")
	cmd.Flags().StringVarP(&source, "source", "s", ingestion.DefaultSource, "Source label stored in each chunk's metadata")

	return cmd
}
