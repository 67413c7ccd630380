package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"adforge/internal/domain/entity"
	"adforge/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	campaignType string
	outputMode   string
	contextPath  string
	modelID      string
	notesPath    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one campaign and print the JSON payload",
	Long: `Runs the full pipeline once: build the prompt, call the model, extract and
validate the JSON object. Nothing is stored.

Example:
  adforge generate --type search --context brief.json
  cat brief.json | adforge generate --type pmax --mode concepts --context -`,
	RunE: runGenerate,
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt that generate would send, without calling the model",
	RunE:  runPrompt,
}

var parseBriefCmd = &cobra.Command{
	Use:   "parse-brief",
	Short: "Turn free-form notes into a campaign brief JSON object",
	RunE:  runParseBrief,
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, promptCmd} {
		c.Flags().StringVarP(&campaignType, "type", "t", "search", "campaign type: search, display, shopping, video, app, pmax")
		c.Flags().StringVarP(&outputMode, "mode", "m", "normal", "output mode: normal or concepts")
		c.Flags().StringVarP(&contextPath, "context", "c", "", "path to the brief JSON file, - for stdin")
		_ = c.MarkFlagRequired("context")
	}
	generateCmd.Flags().StringVar(&modelID, "model", "", "override MODEL_ID")
	parseBriefCmd.Flags().StringVarP(&notesPath, "notes", "n", "-", "path to the notes file, - for stdin")
	parseBriefCmd.Flags().StringVar(&modelID, "model", "", "override MODEL_ID")
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func readRequest(cmd *cobra.Command) (usecase.Request, error) {
	raw, err := readInput(contextPath, cmd.InOrStdin())
	if err != nil {
		return usecase.Request{}, fmt.Errorf("read brief: %w", err)
	}
	var uc entity.UserContext
	if err := json.Unmarshal(raw, &uc); err != nil {
		return usecase.Request{}, fmt.Errorf("brief is not valid JSON: %w", err)
	}
	return usecase.Request{CampaignType: campaignType, OutputMode: outputMode, UserContext: uc}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()
	if modelID != "" {
		cfg.Generation.ModelID = modelID
	}

	req, err := readRequest(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	genaiClient, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return err
	}
	invoker, err := newInvoker(genaiClient, cfg, log)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(invoker, cfg.Generation, log)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, req)
	if err != nil {
		return err
	}
	for _, a := range res.Advisories {
		fmt.Fprintf(cmd.ErrOrStderr(), "advisory: %s: %s\n", a.Path, a.Message)
	}
	return printJSON(cmd.OutOrStdout(), res.Payload)
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	req, err := readRequest(cmd)
	if err != nil {
		return err
	}
	// Preview never reaches the invoker.
	pipeline, err := newPipeline(nil, cfg.Generation, log)
	if err != nil {
		return err
	}
	spec, err := pipeline.Preview(req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), spec.Render())
	return err
}

func runParseBrief(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()
	if modelID != "" {
		cfg.Generation.ModelID = modelID
	}

	notes, err := readInput(notesPath, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}
	ctx := cmd.Context()
	genaiClient, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return err
	}
	invoker, err := newInvoker(genaiClient, cfg, log)
	if err != nil {
		return err
	}
	uc, err := usecase.NewBriefParser(invoker, cfg.Generation).Parse(ctx, string(notes))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), uc)
}
