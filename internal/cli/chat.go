package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurobridge/neurobridge/internal/assistant"
	"github.com/neurobridge/neurobridge/internal/cache"
	"github.com/neurobridge/neurobridge/internal/ingest"
	"github.com/neurobridge/neurobridge/internal/llm"
	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/retrieve"
	"github.com/neurobridge/neurobridge/internal/worker"
)

var (
	kbSource       string
	topK           int
	assessmentPath string
	chatProvider   string
	chatModel      string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions grounded in a reference document",
	Long: `Chat answers follow-up questions using retrieval over a reference
document (a local text/HTML file or an http(s) URL). Answers cite the
retrieved passages; questions the document does not cover are declined
rather than guessed.

Embeddings require OPENAI_API_KEY. Pass a prior report with --assessment
to give answers the session's risk context.

Example:
  neurobridge chat --kb guideline.txt
  neurobridge chat --kb https://example.org/parkinsons-overview --assessment report.json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&kbSource, "kb", "", "reference document: file path or http(s) URL (required)")
	chatCmd.Flags().IntVar(&topK, "k", 3, "retrieved chunks per question")
	chatCmd.Flags().StringVar(&assessmentPath, "assessment", "", "report JSON from a prior screening (optional)")
	chatCmd.Flags().StringVar(&chatProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	chatCmd.Flags().StringVar(&chatModel, "llm-model", "gpt-4o-mini", "LLM model name")
	_ = chatCmd.MarkFlagRequired("kb")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := configureLLM(cfg, chatProvider, chatModel); err != nil {
		return err
	}

	embedKey := os.Getenv("OPENAI_API_KEY")
	if embedKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set (required for embeddings)")
	}

	var assessment *model.RiskAssessment
	if assessmentPath != "" {
		loaded, err := loadAssessment(assessmentPath)
		if err != nil {
			return err
		}
		assessment = loaded
	}

	embedder, err := retrieve.NewOpenAIEmbedder(embedKey, "", cfg.Retrieval.EmbedModel)
	if err != nil {
		return err
	}

	var embedCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			embedCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			embedCache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	limiter := worker.NewLimiter(cfg.Retrieval.RateLimit, cfg.Retrieval.RateBurst)
	retriever := retrieve.NewRetriever(embedder, embedCache, limiter, cfg.Retrieval, cfg.Concurrency.EmbedWorkers)

	fmt.Fprintf(os.Stderr, "Loading reference document: %s\n", kbSource)
	loader := ingest.NewLoader(cfg.HTTP.Timeout, cfg.HTTP.MaxBodyBytes)
	pages, err := loader.Load(ctx, kbSource)
	if err != nil {
		return err
	}
	if err := retriever.Ingest(ctx, pages); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %d pages\n\n", retriever.Size(), len(pages))

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	helper := assistant.New(retriever, provider, limiter, cfg.LLM, topK)

	conversation := &model.Conversation{SessionID: "chat"}
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Ask a question (empty line to quit):")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		turn, err := helper.Respond(ctx, conversation, question, assessment)
		if err != nil {
			if errors.Is(err, assistant.ErrUnavailable) {
				fmt.Fprintf(os.Stderr, "The assistant is temporarily unavailable, please try again later (%v)\n", err)
				continue
			}
			return err
		}
		// Record the exchange only once it succeeded, so a failed attempt
		// does not pollute the history of later questions.
		conversation.Append(model.ConversationTurn{Role: model.RoleUser, Text: question})
		conversation.Append(turn)

		fmt.Printf("\n%s\n\n", turn.Text)
		if verbose && len(turn.RetrievedContext) > 0 {
			fmt.Fprintf(os.Stderr, "(grounded on chunks: %s)\n", strings.Join(turn.RetrievedContext, ", "))
		}
	}
	return scanner.Err()
}

// loadAssessment reads the assessment out of a previously written report
func loadAssessment(path string) (*model.RiskAssessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assessment: %w", err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse assessment: %w", err)
	}
	return &r.Assessment, nil
}
