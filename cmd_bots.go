package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0madic/go-chorus/internal/render"
	"github.com/n0madic/go-chorus/internal/types"
)

func newModelsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Manage chorus models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List chorus models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := a.client.ListChorusModels(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, models)
			}
			return render.Models(a.stdout, models)
		},
	})

	var (
		description string
		responders  []string
		evaluators  []string
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a chorus model",
		Example: `  go-chorus models create panel \
    --responder openai:gpt-4o --responder ollama:llama3:8b \
    --evaluator anthropic:claude-sonnet-4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.CreateChorusModelRequest{Name: args[0], Description: description}
			var err error
			if req.ResponderLLMs, err = parseLLMRefs(responders); err != nil {
				return err
			}
			if req.EvaluatorLLMs, err = parseLLMRefs(evaluators); err != nil {
				return err
			}
			model, err := a.client.CreateChorusModel(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, model)
			}
			fmt.Fprintf(a.stdout, "Created chorus model %q (id %d)\n", model.Name, model.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Model description")
	create.Flags().StringArrayVar(&responders, "responder", nil, "Responder LLM as provider:model (repeatable)")
	create.Flags().StringArrayVar(&evaluators, "evaluator", nil, "Evaluator LLM as provider:model (repeatable)")
	create.MarkFlagRequired("responder") //nolint:errcheck
	create.MarkFlagRequired("evaluator") //nolint:errcheck
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <model-id>",
		Short: "Delete a chorus model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("chorus model", args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.DeleteChorusModel(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printMessage(resp)
		},
	})

	return cmd
}

// parseLLMRefs splits each value at its first colon so model names may
// contain colons themselves.
func parseLLMRefs(values []string) ([]types.LLMRef, error) {
	refs := make([]types.LLMRef, 0, len(values))
	for _, v := range values {
		provider, model, ok := strings.Cut(v, ":")
		provider, model = strings.TrimSpace(provider), strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			return nil, fmt.Errorf("invalid LLM %q: want provider:model", v)
		}
		refs = append(refs, types.LLMRef{Provider: provider, Model: model})
	}
	return refs, nil
}

func newBotsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bots",
		Aliases: []string{"bot"},
		Short:   "Manage bots and chat with them",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List bots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bots, err := a.client.ListBots(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, bots)
			}
			return render.Bots(a.stdout, bots)
		},
	})

	var (
		instructions string
		datasetID    int
		modelID      int
		ragResults   int
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.CreateBotRequest{Name: args[0], Instructions: instructions}
			flags := cmd.Flags()
			if flags.Changed("dataset") {
				req.DatasetID = types.IntPtr(datasetID)
			}
			if flags.Changed("model") {
				req.ChorusModelID = types.IntPtr(modelID)
			}
			if flags.Changed("rag-results") {
				req.RAGResultsCount = types.IntPtr(ragResults)
			}
			bot, err := a.client.CreateBot(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, bot)
			}
			fmt.Fprintf(a.stdout, "Created bot %q (id %d)\n", bot.Name, bot.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&instructions, "instructions", "i", "", "System instructions for the bot")
	create.Flags().IntVar(&datasetID, "dataset", 0, "Dataset to retrieve context from")
	create.Flags().IntVar(&modelID, "model", 0, "Chorus model answering for the bot")
	create.Flags().IntVar(&ragResults, "rag-results", 0, "Number of chunks retrieved per message")
	create.MarkFlagRequired("instructions") //nolint:errcheck
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <bot-id>",
		Short: "Delete a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bot", args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.DeleteBot(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printMessage(resp)
		},
	})

	var ragCount int
	chat := &cobra.Command{
		Use:   "chat <bot-id> <message>...",
		Short: "Send a message to a bot",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bot", args[0])
			if err != nil {
				return err
			}
			message := strings.TrimSpace(strings.Join(args[1:], " "))
			if message == "" {
				return errors.New("message is empty")
			}
			req := types.ChatRequest{Message: message}
			if cmd.Flags().Changed("rag-count") {
				req.RAGCount = types.IntPtr(ragCount)
			}
			resp, err := a.client.Chat(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, resp)
			}
			_, err = fmt.Fprintln(a.stdout, resp.Response)
			return err
		},
	}
	chat.Flags().IntVar(&ragCount, "rag-count", 0, "Override the number of retrieved chunks for this message")
	cmd.AddCommand(chat)

	cmd.AddCommand(&cobra.Command{
		Use:   "history <bot-id>",
		Short: "Show the conversation history of a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bot", args[0])
			if err != nil {
				return err
			}
			history, err := a.client.ChatHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, history)
			}
			for _, h := range history {
				fmt.Fprintf(a.stdout, "[%s]\n> %s\n%s\n\n", h.CreatedAt, h.UserMessage, h.BotResponse)
			}
			return nil
		},
	})

	return cmd
}
